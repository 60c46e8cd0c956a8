package event

// Query constrains a relation lookup.
type Query struct {
	// Max caps the number of returned events. Zero means no cap.
	Max int
	// Types restricts results to these event types. Empty means any.
	Types []Type
}

// Log is the frozen, normalized event array of one fight.
//
// A Log is created once by the normalizer pipeline and then shared by
// reference with every module. Nothing may modify it afterwards: the
// pointers handed out by At, Get and the relation queries point into the
// log's own storage and must be treated as read-only.
type Log struct {
	events    []Event
	index     map[ID]int
	relations *Relations
}

// NewLog freezes events and relations into a Log. The Log takes ownership
// of both; callers must not retain or modify them.
func NewLog(events []Event, relations *Relations) *Log {
	if relations == nil {
		relations = NewRelations()
	}
	index := make(map[ID]int, len(events))
	for i := range events {
		index[events[i].ID] = i
	}
	return &Log{events: events, index: index, relations: relations}
}

// Len returns the number of events.
func (l *Log) Len() int {
	return len(l.events)
}

// At returns the i-th event in dispatch order.
func (l *Log) At(i int) *Event {
	return &l.events[i]
}

// Events returns a copy of the event array.
func (l *Log) Events() []Event {
	return append([]Event(nil), l.events...)
}

// Get looks up an event by ID.
func (l *Log) Get(id ID) (*Event, bool) {
	i, ok := l.index[id]
	if !ok {
		return nil, false
	}
	return &l.events[i], true
}

// Edges returns every relation tag in the log.
func (l *Log) Edges() []Edge {
	return l.relations.Edges()
}

// Linked returns the events that id links to under relation.
func (l *Log) Linked(id ID, relation string, q Query) []*Event {
	return l.resolve(l.relations.Forward(id, relation), q)
}

// LinkedBy returns the events that link to id under relation.
func (l *Log) LinkedBy(id ID, relation string, q Query) []*Event {
	return l.resolve(l.relations.Backward(id, relation), q)
}

// HasLink reports whether id has any edge under relation, in either
// direction.
func (l *Log) HasLink(id ID, relation string) bool {
	return len(l.relations.Forward(id, relation)) > 0 ||
		len(l.relations.Backward(id, relation)) > 0
}

func (l *Log) resolve(ids []ID, q Query) []*Event {
	var out []*Event
	for _, id := range ids {
		ev, ok := l.Get(id)
		if !ok {
			continue
		}
		if len(q.Types) > 0 && !containsType(q.Types, ev.Type) {
			continue
		}
		out = append(out, ev)
		if q.Max > 0 && len(out) >= q.Max {
			break
		}
	}
	return out
}
