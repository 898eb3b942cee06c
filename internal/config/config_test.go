package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePaths(t *testing.T) {
	assert.Equal(t, "/p/main.kicad_pcb.projinst.json", StorePath("/p/main.kicad_pcb"))
	assert.Equal(t, "/p/main.kicad_pcb.projinst.log", LogPath("/p/main.kicad_pcb"))
	assert.Equal(t, "enabled:/a/b", EnabledKey("/a/b"))
	assert.Equal(t, "anchor:1234", AnchorKey("1234"))
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)

	assert.False(t, s.Bool("enabled:/x", false))
	assert.True(t, s.Bool("enabled:/x", true))
	assert.Equal(t, "R1", s.String("anchor:x", "R1"))
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.kicad_pcb.projinst.json")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(EnabledKey("/a"), true))
	require.NoError(t, s.Set(AnchorKey("sheet"), "U3"))
	assert.Error(t, s.Set("bad", 3))
	require.NoError(t, s.Save())

	again, err := Open(path)
	require.NoError(t, err)
	assert.True(t, again.Bool(EnabledKey("/a"), false))
	assert.Equal(t, "U3", again.String(AnchorKey("sheet"), ""))
	assert.Equal(t, "", again.String(EnabledKey("/a"), ""), "type mismatch falls back to default")
	assert.ElementsMatch(t, []string{EnabledKey("/a")}, again.Keys("enabled:"))

	again.Delete(AnchorKey("sheet"))
	require.NoError(t, again.Save())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "U3")
}

func TestStoreSaveSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "an unchanged store should not create a file")
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Settings
		wantErr bool
	}{
		{
			name:  "empty file keeps defaults",
			input: "",
			want:  DefaultSettings(),
		},
		{
			name:  "overrides",
			input: "pad_match: number\nskip_out_of_bounds: false\ngroup_prefix: \"rep:\"\nlog_file: false\n",
			want: &Settings{
				LogMode:         "dev",
				PadMatch:        PadMatchNumber,
				SkipOutOfBounds: false,
				GroupPrefix:     "rep:",
				LogFile:         false,
			},
		},
		{
			name:    "bad pad match",
			input:   "pad_match: name\n",
			wantErr: true,
		},
		{
			name:    "bad yaml",
			input:   "pad_match: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadSettingsFromReader(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
