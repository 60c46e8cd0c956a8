package event

// Matcher selects events by type and ability.
//
// An empty Types list matches any type; an empty Abilities list matches any
// ability. Both conditions must hold.
type Matcher struct {
	Types     []Type
	Abilities []int
}

// Match builds a Matcher for one event type and an optional ability set.
func Match(t Type, abilities ...int) Matcher {
	return Matcher{Types: []Type{t}, Abilities: abilities}
}

// Matches reports whether ev satisfies the matcher.
func (m Matcher) Matches(ev *Event) bool {
	if len(m.Types) > 0 && !containsType(m.Types, ev.Type) {
		return false
	}
	if len(m.Abilities) > 0 && !containsInt(m.Abilities, ev.Ability.GUID) {
		return false
	}
	return true
}

func containsType(types []Type, t Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsInt(ids []int, id int) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
