package testutil

// FixedRunID generates the same run ID every time.
//
// Reports carry their run ID, so golden comparisons need a stable one.
// Unlike engine.FixedGenerator, which returns IDs in sequence and panics
// when exhausted, this generator can back any number of runs.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed run ID generator. An empty id yields
// "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
//
// Implements engine.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
