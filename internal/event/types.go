package event

// ID is the stable identifier of an event within one analysis run.
// IDs are assigned by the normalizer pipeline in array order; synthetic
// events receive IDs past the highest input ID.
type ID int64

// Type is the event kind as it appears in combat logs.
type Type string

const (
	TypeCast            Type = "cast"
	TypeBeginCast       Type = "begincast"
	TypeDamage          Type = "damage"
	TypeHeal            Type = "heal"
	TypeAbsorbed        Type = "absorbed"
	TypeApplyBuff       Type = "applybuff"
	TypeRefreshBuff     Type = "refreshbuff"
	TypeRemoveBuff      Type = "removebuff"
	TypeApplyBuffStack  Type = "applybuffstack"
	TypeRemoveBuffStack Type = "removebuffstack"
	TypeApplyDebuff     Type = "applydebuff"
	TypeRefreshDebuff   Type = "refreshdebuff"
	TypeRemoveDebuff    Type = "removedebuff"
	TypeResourceChange  Type = "resourcechange"
	TypeSummon          Type = "summon"
	TypeDeath           Type = "death"
	TypeGlobalCooldown  Type = "globalcooldown"
	TypeFightEnd        Type = "fightend"
)

var knownTypes = map[Type]bool{
	TypeCast: true, TypeBeginCast: true, TypeDamage: true, TypeHeal: true,
	TypeAbsorbed: true, TypeApplyBuff: true, TypeRefreshBuff: true,
	TypeRemoveBuff: true, TypeApplyBuffStack: true, TypeRemoveBuffStack: true,
	TypeApplyDebuff: true, TypeRefreshDebuff: true, TypeRemoveDebuff: true,
	TypeResourceChange: true, TypeSummon: true, TypeDeath: true,
	TypeGlobalCooldown: true, TypeFightEnd: true,
}

// Known reports whether t is one of the event types the engine understands.
// Unknown types still flow through normalization and dispatch; only
// listeners filtering on them will see them.
func (t Type) Known() bool {
	return knownTypes[t]
}

// Ability identifies the spell or effect an event belongs to.
type Ability struct {
	GUID     int    `json:"guid" yaml:"guid"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Category int    `json:"category,omitempty" yaml:"category,omitempty"`
}

// ClassResource is one resource entry on a cast (cost) or a resource
// change (post-change snapshot).
type ClassResource struct {
	Type   int     `json:"type" yaml:"type"`
	Amount float64 `json:"amount" yaml:"amount"`
	Max    float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Cost   float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
}

// Event is one timestamped occurrence parsed from a combat log.
//
// The type-specific payload is flattened onto the struct; fields that do
// not apply to an event's Type are left at their zero value.
type Event struct {
	ID        ID      `json:"id" yaml:"id,omitempty"`
	Timestamp int64   `json:"timestamp" yaml:"timestamp"`
	Type      Type    `json:"type" yaml:"type"`
	SourceID  int     `json:"sourceID" yaml:"sourceID"`
	TargetID  int     `json:"targetID" yaml:"targetID"`
	Ability   Ability `json:"ability" yaml:"ability"`

	// Damage, heal and absorb payload.
	Amount   int64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Absorbed int64 `json:"absorbed,omitempty" yaml:"absorbed,omitempty"`
	Overheal int64 `json:"overheal,omitempty" yaml:"overheal,omitempty"`
	Tick     bool  `json:"tick,omitempty" yaml:"tick,omitempty"`

	// Stack events.
	Stack int `json:"stack,omitempty" yaml:"stack,omitempty"`

	// Resource change payload. ResourceChange is the raw logged delta.
	ResourceType   int             `json:"resourceChangeType,omitempty" yaml:"resourceChangeType,omitempty"`
	ResourceChange float64         `json:"resourceChange,omitempty" yaml:"resourceChange,omitempty"`
	ClassResources []ClassResource `json:"classResources,omitempty" yaml:"classResources,omitempty"`

	// Set by normalizers.
	Free      bool `json:"free,omitempty" yaml:"free,omitempty"`
	Prepull   bool `json:"prepull,omitempty" yaml:"prepull,omitempty"`
	Synthetic bool `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// Resource returns the class resource entry of the given type, if present.
func (e *Event) Resource(resourceType int) (ClassResource, bool) {
	for _, r := range e.ClassResources {
		if r.Type == resourceType {
			return r, true
		}
	}
	return ClassResource{}, false
}

// Effective returns the amount that actually landed: amount plus absorbed.
// Overheal is already excluded from Amount in the log format.
func (e *Event) Effective() int64 {
	return e.Amount + e.Absorbed
}
