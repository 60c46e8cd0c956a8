// Package fight describes the boundaries and participants of one analyzed
// fight: the selected combatant, their pets, and the friendly and hostile
// actors present.
//
// Fight data is computed before normalization and never changes during a
// run, which is what lets normalizers and module constructors read it as a
// pure input.
package fight

// Actor classifies an actor ID relative to the selected combatant. Values
// are bit flags so filters can combine them, e.g. ActorPlayer|ActorPet.
type Actor uint8

const (
	// ActorPlayer is the selected combatant.
	ActorPlayer Actor = 1 << iota
	// ActorPet is a pet owned by the selected combatant.
	ActorPet
	// ActorFriendly is any other friendly actor.
	ActorFriendly
	// ActorEnemy is a hostile actor.
	ActorEnemy
	// ActorUnknown is an actor not listed in the fight (environment, -1, ...).
	ActorUnknown

	// ActorAny matches every classification.
	ActorAny = ActorPlayer | ActorPet | ActorFriendly | ActorEnemy | ActorUnknown
)

// Has reports whether a includes any flag in other.
func (a Actor) Has(other Actor) bool {
	return a&other != 0
}

// Combatant is the selected player together with the talent state the
// analysis depends on.
type Combatant struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Spec string `json:"spec,omitempty" yaml:"spec,omitempty"`

	// Talents maps talent spell ID to rank. Rank 0 or absent means not taken.
	Talents map[int]int `json:"talents,omitempty" yaml:"talents,omitempty"`
}

// HasTalent reports whether the talent is taken at any rank.
func (c Combatant) HasTalent(id int) bool {
	return c.Talents[id] > 0
}

// TalentRank returns the taken rank of a talent, 0 if not taken.
func (c Combatant) TalentRank(id int) int {
	return c.Talents[id]
}

// Fight is one encounter window in a report.
type Fight struct {
	ID    int   `json:"id" yaml:"id"`
	Start int64 `json:"start" yaml:"start"`
	End   int64 `json:"end" yaml:"end"`

	Player Combatant `json:"player" yaml:"player"`

	// Pets maps pet actor ID to owner actor ID.
	Pets       map[int]int `json:"pets,omitempty" yaml:"pets,omitempty"`
	Friendlies []int       `json:"friendlies,omitempty" yaml:"friendlies,omitempty"`
	Enemies    []int       `json:"enemies,omitempty" yaml:"enemies,omitempty"`
}

// Duration returns the fight length in milliseconds.
func (f *Fight) Duration() int64 {
	if f.End < f.Start {
		return 0
	}
	return f.End - f.Start
}

// Classify returns the Actor classification of an actor ID.
func (f *Fight) Classify(actorID int) Actor {
	if actorID == f.Player.ID {
		return ActorPlayer
	}
	if owner, ok := f.Pets[actorID]; ok {
		if owner == f.Player.ID {
			return ActorPet
		}
		return ActorFriendly
	}
	for _, id := range f.Friendlies {
		if id == actorID {
			return ActorFriendly
		}
	}
	for _, id := range f.Enemies {
		if id == actorID {
			return ActorEnemy
		}
	}
	return ActorUnknown
}
