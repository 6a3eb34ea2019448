package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// favoritePrefix marks the favorite playlist directory in an archive.
const favoritePrefix = "_"

// PlaylistID derives the id of an archive directory name.
func PlaylistID(dirName string) string {
	return strings.ReplaceAll(strings.ToLower(PlaylistName(dirName)), " ", "-")
}

// PlaylistName strips the favorite marker from an archive directory name.
func PlaylistName(dirName string) string {
	return strings.TrimPrefix(dirName, favoritePrefix)
}

// BuildSummary scans an archive and lists its playlists in name order.
// Directories whose id cannot be served are left out.
func BuildSummary(archiveDir string) (Summary, error) {
	dirs, err := playlistDirs(archiveDir)
	if err != nil {
		return Summary{}, err
	}
	dirs, _ = splitUsable(dirs)
	summary := Summary{Playlists: make([]Entry, 0, len(dirs))}
	for _, d := range dirs {
		summary.Playlists = append(summary.Playlists, Entry{Name: PlaylistName(d), ID: PlaylistID(d)})
	}
	summary.Favorite = favorite(dirs)
	return summary, nil
}

// BuildPlaylist reads the track files of one archive directory in file name
// order.
func BuildPlaylist(archiveDir, dirName string) ([]Track, error) {
	dir := filepath.Join(archiveDir, dirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read playlist dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	tracks := make([]Track, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read track %s: %w", name, err)
		}
		var t Track
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decode track %s: %w", name, err)
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// Compile writes the summary to outputDir/index and every playlist to
// outputDir/{id}, the layout DirSource and the catalog server read.
func Compile(archiveDir, outputDir string, log zerolog.Logger) error {
	log.Info().Str("input", archiveDir).Msg("start processing playlists")

	summary, err := BuildSummary(archiveDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := writeJSON(filepath.Join(outputDir, IndexName), summary); err != nil {
		return err
	}
	log.Info().Int("playlists", len(summary.Playlists)).Str("favorite", summary.Favorite).Msg("playlist index saved")

	dirs, err := playlistDirs(archiveDir)
	if err != nil {
		return err
	}
	dirs, skipped := splitUsable(dirs)
	for _, d := range skipped {
		log.Warn().Str("dir", d).Str("id", PlaylistID(d)).Msg("skipping playlist with unusable id")
	}
	for _, d := range dirs {
		tracks, err := BuildPlaylist(archiveDir, d)
		if err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(outputDir, PlaylistID(d)), tracks); err != nil {
			return err
		}
		log.Info().Str("playlist", PlaylistName(d)).Int("tracks", len(tracks)).Msg("playlist saved")
	}
	log.Info().Msg("done")
	return nil
}

func playlistDirs(archiveDir string) ([]string, error) {
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// splitUsable separates the directories whose id can be written and
// located from the others, keeping their order.
func splitUsable(dirs []string) (usable, skipped []string) {
	for _, d := range dirs {
		id := PlaylistID(d)
		if ValidID(id) && id != IndexName {
			usable = append(usable, d)
		} else {
			skipped = append(skipped, d)
		}
	}
	return usable, skipped
}

func favorite(sortedDirs []string) string {
	if len(sortedDirs) == 0 {
		return ""
	}
	for _, d := range sortedDirs {
		if strings.HasPrefix(d, favoritePrefix) {
			return PlaylistID(d)
		}
	}
	return PlaylistID(sortedDirs[0])
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
