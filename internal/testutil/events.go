// Package testutil provides fight and event builders and a one-call
// analysis runner for package tests.
package testutil

import (
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Actor IDs of the default test fight.
const (
	PlayerID = 1
	AllyID   = 2
	PetID    = 10
	EnemyID  = 100
)

// Fight returns a one-minute fight starting at 0 with the player, one pet,
// one ally and one enemy.
func Fight() *fight.Fight {
	return &fight.Fight{
		ID:         1,
		Start:      0,
		End:        60000,
		Player:     fight.Combatant{ID: PlayerID, Name: "Tester", Talents: map[int]int{}},
		Pets:       map[int]int{PetID: PlayerID},
		Friendlies: []int{PlayerID, AllyID},
		Enemies:    []int{EnemyID},
	}
}

// Cast is a player cast.
func Cast(ts int64, spell int) event.Event {
	return event.Event{
		Timestamp: ts,
		Type:      event.TypeCast,
		SourceID:  PlayerID,
		TargetID:  PlayerID,
		Ability:   event.Ability{GUID: spell},
	}
}

// CastWithCost is a player cast carrying a cost for one resource type.
func CastWithCost(ts int64, spell, resource int, cost float64) event.Event {
	ev := Cast(ts, spell)
	ev.ClassResources = []event.ClassResource{{Type: resource, Cost: cost}}
	return ev
}

// Gain is a resource change on the player.
func Gain(ts int64, spell, resource int, delta float64) event.Event {
	return event.Event{
		Timestamp:      ts,
		Type:           event.TypeResourceChange,
		SourceID:       PlayerID,
		TargetID:       PlayerID,
		Ability:        event.Ability{GUID: spell},
		ResourceType:   resource,
		ResourceChange: delta,
	}
}

// Aura is a buff change by the player on target.
func Aura(ts int64, typ event.Type, spell, target int) event.Event {
	return event.Event{
		Timestamp: ts,
		Type:      typ,
		SourceID:  PlayerID,
		TargetID:  target,
		Ability:   event.Ability{GUID: spell},
	}
}

// Tick is a periodic heal by the player on target.
func Tick(ts int64, spell, target int, amount int64) event.Event {
	return event.Event{
		Timestamp: ts,
		Type:      event.TypeHeal,
		SourceID:  PlayerID,
		TargetID:  target,
		Ability:   event.Ability{GUID: spell},
		Amount:    amount,
		Tick:      true,
	}
}

// Named sets the ability name of ev.
func Named(ev event.Event, name string) event.Event {
	ev.Ability.Name = name
	return ev
}
