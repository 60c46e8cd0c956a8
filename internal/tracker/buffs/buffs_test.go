package buffs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	tu "github.com/adilasif/WoWAnalyzer-sub001/internal/testutil"
)

const (
	clearcasting = 16870
	soulOfForest = 114108
)

func TestTracker_Uptime(t *testing.T) {
	res := tu.Run(t, tu.Fight(), []event.Event{
		tu.Named(tu.Aura(1000, event.TypeApplyBuff, clearcasting, tu.PlayerID), "Clearcasting"),
		tu.Aura(4000, event.TypeRemoveBuff, clearcasting, tu.PlayerID),
		tu.Aura(10000, event.TypeApplyBuff, clearcasting, tu.PlayerID),
		tu.Aura(11000, event.TypeRefreshBuff, clearcasting, tu.PlayerID),
		tu.Aura(12000, event.TypeRemoveBuff, clearcasting, tu.PlayerID),
		tu.Aura(30000, event.TypeApplyBuff, soulOfForest, tu.PlayerID),
		tu.Aura(31000, event.TypeApplyBuff, soulOfForest, tu.AllyID),
	}, []engine.Definition{Definition()})

	tr := tu.Module[*Tracker](t, res, Name)
	assert.Equal(t, int64(5000), tr.Uptime(clearcasting))
	assert.Equal(t, int64(30000), tr.Uptime(soulOfForest), "still up at fight end")
	assert.False(t, tr.Has(soulOfForest), "fight over")

	rows, ok := tr.Render().([]Uptime)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, Uptime{Ability: clearcasting, Name: "Clearcasting", Applies: 2, UptimeMs: 5000, Percent: 5000.0 / 60000.0}, rows[0])
	assert.Equal(t, 1, rows[1].Applies, "buff on an ally is ignored")
}

// probe records whether the buff was up at each of its casts.
type probe struct {
	up []bool
}

func TestTracker_HasDuringDispatch(t *testing.T) {
	probeDef := engine.Definition{
		Name: "probe",
		Deps: []engine.Dependency{engine.Dep(Name)},
		New: func(c *engine.Context) (any, error) {
			b, err := engine.Need[*Tracker](c, Name)
			if err != nil {
				return nil, err
			}
			p := &probe{}
			c.On(engine.On(event.TypeCast), func(*event.Event) error {
				p.up = append(p.up, b.Has(clearcasting))
				return nil
			})
			return p, nil
		},
	}
	stacks := tu.Aura(2500, event.TypeApplyBuffStack, clearcasting, tu.PlayerID)
	stacks.Stack = 2

	res := tu.Run(t, tu.Fight(), []event.Event{
		tu.Cast(500, 1),
		tu.Aura(1000, event.TypeApplyBuff, clearcasting, tu.PlayerID),
		tu.Cast(2000, 1),
		stacks,
		tu.Aura(3000, event.TypeRemoveBuff, clearcasting, tu.PlayerID),
		tu.Cast(3500, 1),
	}, []engine.Definition{Definition(), probeDef})

	p := tu.Module[*probe](t, res, "probe")
	assert.Equal(t, []bool{false, true, false}, p.up)
	assert.Equal(t, int64(2000), tu.Module[*Tracker](t, res, Name).Uptime(clearcasting))
}
