package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/normalize"
)

// Run analyzes events with defs registered and all of them as roots.
// The FightEnd normalizer is always included.
func Run(t *testing.T, f *fight.Fight, events []event.Event, defs []engine.Definition, normalizers ...normalize.Normalizer) *engine.Result {
	t.Helper()

	catalog := engine.NewCatalog()
	require.NoError(t, catalog.Register(defs...))

	roots := make([]engine.Dependency, 0, len(defs))
	for _, def := range defs {
		roots = append(roots, engine.Dep(def.Name))
	}

	a := engine.NewAnalyzer(catalog, roots,
		engine.WithLogger(slog.New(slog.DiscardHandler)),
		engine.WithRunIDs(NewFixedRunID("")),
		engine.WithNormalizers(append(normalizers, normalize.FightEnd{})...),
	)
	res, err := a.Run(f, events)
	require.NoError(t, err)
	return res
}

// Module returns the module registered under name as a T.
func Module[T any](t *testing.T, res *engine.Result, name string) T {
	t.Helper()
	m, ok := engine.Lookup[T](res.Registry, name)
	require.True(t, ok, "module %q not found or wrong type", name)
	return m
}
