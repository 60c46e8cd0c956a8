package eventlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/normalize"
)

func TestLoad_YAML(t *testing.T) {
	f, err := Load("testdata/restoration.yaml")
	require.NoError(t, err)

	assert.Equal(t, 7, f.Fight.ID)
	assert.Equal(t, int64(30000), f.Fight.End)
	assert.Equal(t, 1, f.Fight.Player.TalentRank(197721))
	assert.Equal(t, map[int]int{10: 1}, f.Fight.Pets)
	require.Len(t, f.Events, 7)

	first := f.Events[0]
	assert.Equal(t, event.TypeHeal, first.Type)
	assert.True(t, first.Tick)
	assert.Equal(t, "Lifebloom", first.Ability.Name)

	change := f.Events[5]
	assert.Equal(t, 1000.0, change.ResourceChange)
	snap, ok := change.Resource(0)
	require.True(t, ok)
	assert.Equal(t, 240000.0, snap.Amount)
}

func TestLoad_JSON(t *testing.T) {
	f, err := Load("testdata/small.json")
	require.NoError(t, err)

	assert.Equal(t, int64(100), f.Fight.Start)
	require.Len(t, f.Events, 2)
	assert.Equal(t, int64(150), f.Events[1].Effective())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.yaml")
	assert.ErrorContains(t, err, "read event log")
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		src    string
		want   string
	}{
		{"unknown yaml field", FormatYAML, "fight: {player: {id: 1}}\nevnts: []\n", "field evnts not found"},
		{"unknown json field", FormatJSON, `{"fight": {"player": {"id": 1}}, "extra": 1}`, "unknown field"},
		{"end before start", FormatYAML, "fight: {start: 10, end: 5, player: {id: 1}}\n", "before it starts"},
		{"no player", FormatYAML, "fight: {end: 5}\n", "player.id is required"},
		{"missing type", FormatYAML, "fight: {player: {id: 1}}\nevents: [{timestamp: 1}]\n", "event 0: type is required"},
		{"preset id", FormatYAML, "fight: {player: {id: 1}}\nevents: [{id: 4, timestamp: 1, type: cast}]\n", "must be omitted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src), tt.format)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecode_NormalizesNames(t *testing.T) {
	src := "fight: {player: {id: 1, name: \"Ze\u0301phyr\"}}\n" +
		"events: [{timestamp: 1, type: cast, ability: {guid: 1, name: \"Cle\u0301mence\"}}]\n"

	f, err := Decode(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "Z\u00e9phyr", f.Fight.Player.Name)
	assert.Equal(t, "Cl\u00e9mence", f.Events[0].Ability.Name)
}

func TestFile_UnknownTypes(t *testing.T) {
	src := "fight: {player: {id: 1}}\n" +
		"events:\n" +
		"  - {timestamp: 1, type: encounterstart}\n" +
		"  - {timestamp: 2, type: cast}\n" +
		"  - {timestamp: 3, type: combatantinfo}\n" +
		"  - {timestamp: 4, type: encounterstart}\n"

	f, err := Decode(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []event.Type{"combatantinfo", "encounterstart"}, f.UnknownTypes())
	assert.Len(t, f.Events, 4, "unknown events are kept")
}

func TestFile_UnknownTypesNoneInFixture(t *testing.T) {
	f, err := Load("testdata/restoration.yaml")
	require.NoError(t, err)
	assert.Empty(t, f.UnknownTypes())
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFor("log.JSON"))
	assert.Equal(t, FormatYAML, FormatFor("log.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("log"))
}

func TestNormalized_Encode(t *testing.T) {
	f, err := Load("testdata/small.json")
	require.NoError(t, err)

	log, _ := normalize.NewPipeline([]normalize.Normalizer{normalize.FightEnd{}}).Run(&f.Fight, f.Events)
	n := NewNormalized(&f.Fight, log)
	require.Len(t, n.Events, 3)

	var y bytes.Buffer
	require.NoError(t, n.Encode(&y, FormatYAML))
	assert.Contains(t, y.String(), "type: fightend")
	assert.Contains(t, y.String(), "relations: []")

	var j bytes.Buffer
	require.NoError(t, n.Encode(&j, FormatJSON))
	assert.Contains(t, j.String(), `"type": "fightend"`)
	assert.Contains(t, j.String(), `"relations": []`)
}
