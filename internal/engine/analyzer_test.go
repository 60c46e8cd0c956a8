package engine

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/normalize"
)

// castCounter counts player casts and records the order they arrive in.
type castCounter struct {
	seen []event.ID
}

func (c *castCounter) Render() any { return len(c.seen) }

func castCounterDef() Definition {
	return Definition{Name: "casts", New: func(ctx *Context) (any, error) {
		m := &castCounter{}
		ctx.On(On(event.TypeCast), func(ev *event.Event) error {
			m.seen = append(m.seen, ev.ID)
			return nil
		})
		return m, nil
	}}
}

func TestAnalyzer_RunNormalizesThenDispatches(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(castCounterDef()))
	a := NewAnalyzer(c, Roots("casts"),
		WithRunIDs(NewFixedGenerator("run-1")),
		WithNormalizers(
			&normalize.Reorder{
				Label:           "a-before-b",
				Before:          event.Match(event.TypeCast, 1),
				After:           event.Match(event.TypeCast, 2),
				BufferMs:        50,
				UpdateTimestamp: true,
			},
			normalize.FightEnd{},
		),
	)

	res, err := a.Run(dispatchFight(), []event.Event{
		{Timestamp: 1000, Type: event.TypeCast, SourceID: player, Ability: event.Ability{GUID: 2}},
		{Timestamp: 1000, Type: event.TypeCast, SourceID: player, Ability: event.Ability{GUID: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 3, res.Log.Len(), "fightend appended")
	counter, ok := Lookup[*castCounter](res.Registry, "casts")
	require.True(t, ok)
	assert.Equal(t, []event.ID{2, 1}, counter.seen, "reordered cast delivered after its anchor")
	assert.Equal(t, DispatchStats{Events: 3, Deliveries: 2}, res.Dispatch)
	assert.Equal(t, []Output{{Module: "casts", Data: 2}}, res.Registry.Outputs())
}

func TestAnalyzer_ConfigurationErrorStopsBeforeDispatch(t *testing.T) {
	delivered := 0
	c := NewCatalog()
	require.NoError(t, c.Register(
		Definition{Name: "a", Deps: []Dependency{Dep("b")}, New: func(ctx *Context) (any, error) {
			ctx.On(Filter{}, func(*event.Event) error { delivered++; return nil })
			return &stub{}, nil
		}},
		Definition{Name: "b", Deps: []Dependency{Dep("a")}, New: counting(map[string]int{}, "b")},
	))

	res, err := NewAnalyzer(c, Roots("a"), WithRunIDs(NewFixedGenerator("run-1"))).
		Run(dispatchFight(), []event.Event{{Timestamp: 0, Type: event.TypeCast}})

	assert.Nil(t, res)
	assert.True(t, IsCycleError(err))
	assert.Zero(t, delivered)
}

func TestAnalyzer_Deterministic(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(castCounterDef()))
	in := []event.Event{
		{Timestamp: 0, Type: event.TypeCast, SourceID: player, Ability: event.Ability{GUID: 1}},
		{Timestamp: 5, Type: event.TypeCast, SourceID: player, Ability: event.Ability{GUID: 2}},
	}
	run := func() *Result {
		a := NewAnalyzer(c, Roots("casts"), WithRunIDs(NewFixedGenerator("run")), WithNormalizers(normalize.FightEnd{}))
		res, err := a.Run(dispatchFight(), in)
		require.NoError(t, err)
		return res
	}

	first, second := run(), run()

	assert.Equal(t, first.Log.Events(), second.Log.Events())
	assert.Equal(t, first.Registry.Outputs(), second.Registry.Outputs())
	assert.Equal(t, first.Dispatch, second.Dispatch)
}

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	gen := UUIDv7Generator{}
	const goroutines = 50

	ids := make(chan string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- gen.Generate()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate run ID %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestFixedGenerator_Sequence(t *testing.T) {
	gen := NewFixedGenerator("run-1", "run-2")

	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
	assert.PanicsWithValue(t, "engine: no run IDs left", func() { gen.Generate() })
}
