package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

const (
	player = 1
	pet    = 10
	ally   = 2
	enemy  = 100
)

func dispatchFight() *fight.Fight {
	return &fight.Fight{
		ID:         1,
		Start:      0,
		End:        10000,
		Player:     fight.Combatant{ID: player},
		Pets:       map[int]int{pet: player},
		Friendlies: []int{player, ally},
		Enemies:    []int{enemy},
	}
}

func frozen(events ...event.Event) *event.Log {
	for i := range events {
		events[i].ID = event.ID(i + 1)
	}
	return event.NewLog(events, nil)
}

// recorder registers listeners that append "<module>:<tag>:<eventID>".
func recorder(trace *[]string, name string, listeners map[string]Filter, order ...string) Definition {
	return Definition{Name: name, New: func(ctx *Context) (any, error) {
		for _, tag := range order {
			ctx.On(listeners[tag], func(ev *event.Event) error {
				*trace = append(*trace, fmt.Sprintf("%s:%s:%d", name, tag, ev.ID))
				return nil
			})
		}
		return &stub{name: name}, nil
	}}
}

func TestDispatch_Ordering(t *testing.T) {
	var trace []string
	c := NewCatalog()
	require.NoError(t, c.Register(
		recorder(&trace, "first", map[string]Filter{"cast": On(event.TypeCast), "all": {}}, "cast", "all"),
		recorder(&trace, "second", map[string]Filter{"any": {}}, "any"),
	))
	log := frozen(
		event.Event{Timestamp: 0, Type: event.TypeCast, SourceID: player},
		event.Event{Timestamp: 5, Type: event.TypeHeal, SourceID: player},
		event.Event{Timestamp: 5, Type: event.TypeCast, SourceID: player},
	)
	reg, err := Resolve(c, Roots("first", "second"), Env{Fight: dispatchFight(), Log: log})
	require.NoError(t, err)

	stats := Dispatch(reg, log, dispatchFight(), nil)

	assert.Equal(t, []string{
		"first:cast:1", "first:all:1", "second:any:1",
		"first:all:2", "second:any:2",
		"first:cast:3", "first:all:3", "second:any:3",
	}, trace)
	assert.Equal(t, DispatchStats{Events: 3, Deliveries: 8}, stats)
}

func TestDispatch_UnsortedLogDeliveredByTimestamp(t *testing.T) {
	var trace []string
	c := NewCatalog()
	require.NoError(t, c.Register(recorder(&trace, "m", map[string]Filter{"all": {}}, "all")))
	log := frozen(
		event.Event{Timestamp: 10, Type: event.TypeCast},
		event.Event{Timestamp: 0, Type: event.TypeCast},
		event.Event{Timestamp: 10, Type: event.TypeHeal},
	)
	reg, err := Resolve(c, Roots("m"), Env{Fight: dispatchFight(), Log: log})
	require.NoError(t, err)

	Dispatch(reg, log, dispatchFight(), nil)

	assert.Equal(t, []string{"m:all:2", "m:all:1", "m:all:3"}, trace)
}

func TestDispatch_ActorAndAbilityFilters(t *testing.T) {
	var trace []string
	filters := map[string]Filter{
		"mine":    On(event.TypeHeal).By(fight.ActorPlayer | fight.ActorPet),
		"toEnemy": On(event.TypeDamage).To(fight.ActorEnemy),
		"spell":   On(event.TypeCast).Spell(774),
	}
	c := NewCatalog()
	require.NoError(t, c.Register(recorder(&trace, "m", filters, "mine", "toEnemy", "spell")))
	log := frozen(
		event.Event{Timestamp: 0, Type: event.TypeHeal, SourceID: player, TargetID: ally},
		event.Event{Timestamp: 1, Type: event.TypeHeal, SourceID: pet, TargetID: ally},
		event.Event{Timestamp: 2, Type: event.TypeHeal, SourceID: ally, TargetID: player},
		event.Event{Timestamp: 3, Type: event.TypeDamage, SourceID: player, TargetID: enemy},
		event.Event{Timestamp: 4, Type: event.TypeDamage, SourceID: enemy, TargetID: player},
		event.Event{Timestamp: 5, Type: event.TypeCast, SourceID: player, Ability: event.Ability{GUID: 774}},
		event.Event{Timestamp: 6, Type: event.TypeCast, SourceID: player, Ability: event.Ability{GUID: 8936}},
	)
	reg, err := Resolve(c, Roots("m"), Env{Fight: dispatchFight(), Log: log})
	require.NoError(t, err)

	Dispatch(reg, log, dispatchFight(), nil)

	assert.Equal(t, []string{"m:mine:1", "m:mine:2", "m:toEnemy:4", "m:spell:6"}, trace)
}

func TestDispatch_SkipsInactiveModules(t *testing.T) {
	var trace []string
	c := NewCatalog()
	require.NoError(t, c.Register(Definition{Name: "off", New: func(ctx *Context) (any, error) {
		ctx.On(Filter{}, func(ev *event.Event) error {
			trace = append(trace, "off")
			return nil
		})
		ctx.Deactivate()
		return &stub{}, nil
	}}))
	log := frozen(event.Event{Timestamp: 0, Type: event.TypeCast})
	reg, err := Resolve(c, Roots("off"), Env{Fight: dispatchFight(), Log: log})
	require.NoError(t, err)

	stats := Dispatch(reg, log, dispatchFight(), nil)

	assert.Empty(t, trace)
	assert.Equal(t, 0, stats.Deliveries)
}

func TestDispatch_ListenerFailuresRecordedAndContinue(t *testing.T) {
	var trace []string
	boom := errors.New("boom")
	c := NewCatalog()
	require.NoError(t, c.Register(
		Definition{Name: "flaky", New: func(ctx *Context) (any, error) {
			ctx.On(On(event.TypeCast), func(ev *event.Event) error {
				if ev.ID == 1 {
					return boom
				}
				panic("nil map")
			})
			ctx.On(On(event.TypeCast), func(ev *event.Event) error {
				trace = append(trace, fmt.Sprintf("flaky-second:%d", ev.ID))
				return nil
			})
			return &stub{}, nil
		}},
		recorder(&trace, "steady", map[string]Filter{"all": {}}, "all"),
	))
	log := frozen(
		event.Event{Timestamp: 0, Type: event.TypeCast},
		event.Event{Timestamp: 1, Type: event.TypeCast},
	)
	reg, err := Resolve(c, Roots("flaky", "steady"), Env{Fight: dispatchFight(), Log: log})
	require.NoError(t, err)

	stats := Dispatch(reg, log, dispatchFight(), nil)

	assert.Equal(t, []string{"flaky-second:1", "steady:all:1", "flaky-second:2", "steady:all:2"}, trace)
	assert.Equal(t, 2, stats.Failures)

	flaky, _ := reg.Get("flaky")
	require.Len(t, flaky.Errors(), 2)
	assert.ErrorIs(t, flaky.Errors()[0], boom)
	assert.False(t, flaky.Errors()[0].Panic)
	assert.True(t, flaky.Errors()[1].Panic)
	assert.Equal(t, event.ID(2), flaky.Errors()[1].EventID)
	assert.Contains(t, flaky.Errors()[1].Error(), "nil map")
}

func TestDispatch_ErrorListCapped(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(Definition{Name: "bad", New: func(ctx *Context) (any, error) {
		ctx.On(Filter{}, func(*event.Event) error { return errors.New("always") })
		return &stub{}, nil
	}}))
	events := make([]event.Event, MaxRecordedErrors+5)
	for i := range events {
		events[i] = event.Event{Timestamp: int64(i), Type: event.TypeCast}
	}
	log := frozen(events...)
	reg, err := Resolve(c, Roots("bad"), Env{Fight: dispatchFight(), Log: log})
	require.NoError(t, err)

	Dispatch(reg, log, dispatchFight(), nil)

	bad, _ := reg.Get("bad")
	assert.Len(t, bad.Errors(), MaxRecordedErrors)
	assert.Equal(t, MaxRecordedErrors+5, bad.Failures())
}

func TestContext_SealedAfterConstruction(t *testing.T) {
	var saved *Context
	c := NewCatalog()
	require.NoError(t, c.Register(Definition{Name: "m", New: func(ctx *Context) (any, error) {
		saved = ctx
		return &stub{}, nil
	}}))
	_, err := Resolve(c, Roots("m"), testEnv())
	require.NoError(t, err)

	assert.Panics(t, func() { saved.On(Filter{}, func(*event.Event) error { return nil }) })
	assert.Panics(t, func() { saved.Deactivate() })
}
