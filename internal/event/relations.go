package event

import "sort"

// relationKey addresses one adjacency list.
type relationKey struct {
	id       ID
	relation string
}

// Edge is one directed relation tag, as recorded by a normalizer.
type Edge struct {
	From     ID     `json:"from" yaml:"from"`
	Relation string `json:"relation" yaml:"relation"`
	To       ID     `json:"to" yaml:"to"`
}

// Relations stores named edges between events.
//
// Every edge is recorded in both directions so it can be queried from
// either end: Forward(from, name) and Backward(to, name). Edges are only
// created by normalizers before dispatch; after the pipeline freezes the
// Log, Relations is never mutated.
type Relations struct {
	forward  map[relationKey][]ID
	backward map[relationKey][]ID
	edges    []Edge
}

// NewRelations creates an empty relation index.
func NewRelations() *Relations {
	return &Relations{
		forward:  make(map[relationKey][]ID),
		backward: make(map[relationKey][]ID),
	}
}

// Link records from --relation--> to. Returns false if the edge already
// exists.
func (r *Relations) Link(from ID, relation string, to ID) bool {
	fk := relationKey{id: from, relation: relation}
	for _, existing := range r.forward[fk] {
		if existing == to {
			return false
		}
	}
	r.forward[fk] = append(r.forward[fk], to)
	bk := relationKey{id: to, relation: relation}
	r.backward[bk] = append(r.backward[bk], from)
	r.edges = append(r.edges, Edge{From: from, Relation: relation, To: to})
	return true
}

// Forward returns the IDs linked from id under relation, in link order.
func (r *Relations) Forward(id ID, relation string) []ID {
	return append([]ID(nil), r.forward[relationKey{id: id, relation: relation}]...)
}

// Backward returns the IDs that link to id under relation, in link order.
func (r *Relations) Backward(id ID, relation string) []ID {
	return append([]ID(nil), r.backward[relationKey{id: id, relation: relation}]...)
}

// Len returns the number of edges.
func (r *Relations) Len() int {
	return len(r.edges)
}

// Edges returns all edges sorted by (From, Relation, To).
func (r *Relations) Edges() []Edge {
	out := append([]Edge(nil), r.edges...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].Relation != out[j].Relation {
			return out[i].Relation < out[j].Relation
		}
		return out[i].To < out[j].To
	})
	return out
}
