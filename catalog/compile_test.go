package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeTrack(t *testing.T, path string, tr Track) {
	t.Helper()
	data, err := json.Marshal(tr)
	require.NoError(t, err)
	write(t, path, string(data))
}

// archive builds:
//
//	Road Trip/0000010__a.json, 0000020__b.json
//	_Chill Out/0000010__c.json
//	Empty/
func archive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTrack(t, filepath.Join(root, "Road Trip", "0000020__b.json"), Track{Title: "B", Author: "Y", Duration: "00:04:00", VideoID: "b"})
	writeTrack(t, filepath.Join(root, "Road Trip", "0000010__a.json"), Track{Title: "A", Author: "X", Duration: "00:03:00", VideoID: "a"})
	write(t, filepath.Join(root, "Road Trip", "notes.txt"), "ignored")
	writeTrack(t, filepath.Join(root, "_Chill Out", "0000010__c.json"), Track{Title: "C", Author: "Z", Duration: "00:05:00", VideoID: "c"})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Empty"), 0o755))
	return root
}

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		dir      string
		wantID   string
		wantName string
	}{
		{"Road Trip", "road-trip", "Road Trip"},
		{"_Chill Out", "chill-out", "Chill Out"},
		{"jazz", "jazz", "jazz"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.wantID, PlaylistID(tt.dir))
			assert.Equal(t, tt.wantName, PlaylistName(tt.dir))
		})
	}
}

func TestBuildSummary(t *testing.T) {
	summary, err := BuildSummary(archive(t))
	require.NoError(t, err)

	assert.Equal(t, "chill-out", summary.Favorite)
	assert.Equal(t, []Entry{
		{Name: "Empty", ID: "empty"},
		{Name: "Road Trip", ID: "road-trip"},
		{Name: "Chill Out", ID: "chill-out"},
	}, summary.Playlists)
	assert.Equal(t, 1, summary.IndexOf("road-trip"))
	assert.Equal(t, -1, summary.IndexOf("nope"))
}

func TestBuildSummary_FavoriteFallsBackToFirst(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Zeta"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Alpha"), 0o755))

	summary, err := BuildSummary(root)
	require.NoError(t, err)
	assert.Equal(t, "alpha", summary.Favorite)
}

func TestBuildSummary_EmptyArchive(t *testing.T) {
	summary, err := BuildSummary(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, summary.Favorite)
	assert.Empty(t, summary.Playlists)
}

func TestBuildPlaylist_SortedByFileName(t *testing.T) {
	tracks, err := BuildPlaylist(archive(t), "Road Trip")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "a", tracks[0].VideoID)
	assert.Equal(t, "b", tracks[1].VideoID)
}

func TestCompile_ReadableByDirSource(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, Compile(archive(t), out, zerolog.Nop()))

	src := NewDirSource(out)
	ctx := context.Background()

	summary, err := src.FetchSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "chill-out", summary.Favorite)
	assert.Len(t, summary.Playlists, 3)

	tracks, err := src.FetchPlaylist(ctx, "road-trip")
	require.NoError(t, err)
	assert.Equal(t, []Track{
		{Title: "A", Author: "X", Duration: "00:03:00", VideoID: "a"},
		{Title: "B", Author: "Y", Duration: "00:04:00", VideoID: "b"},
	}, tracks)

	tracks, err = src.FetchPlaylist(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, tracks)

	_, err = src.FetchPlaylist(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = src.FetchPlaylist(ctx, "../out")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompile_SkipsUnusableIDs(t *testing.T) {
	root := t.TempDir()
	writeTrack(t, filepath.Join(root, "_Rock & Roll", "0000010__r.json"), Track{Title: "R", VideoID: "r"})
	writeTrack(t, filepath.Join(root, "Index", "0000010__i.json"), Track{Title: "I", VideoID: "i"})
	writeTrack(t, filepath.Join(root, "Jazz", "0000010__j.json"), Track{Title: "J", VideoID: "j"})

	summary, err := BuildSummary(root)
	require.NoError(t, err)
	assert.Equal(t, "jazz", summary.Favorite, "an unusable favorite falls back to the first usable playlist")
	assert.Equal(t, []Entry{{Name: "Jazz", ID: "jazz"}}, summary.Playlists)

	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, Compile(root, out, zerolog.Nop()))

	src := NewDirSource(out)
	ctx := context.Background()
	index, err := src.FetchSummary(ctx)
	require.NoError(t, err)
	for _, e := range index.Playlists {
		_, err := src.FetchPlaylist(ctx, e.ID)
		assert.NoError(t, err, "index lists %q", e.ID)
	}
	_, err = src.FetchPlaylist(ctx, index.Favorite)
	assert.NoError(t, err)
}
