package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IndexName is the file and path element holding the summary.
const IndexName = "index"

// Source fetches playlists from one place.
type Source interface {
	FetchSummary(ctx context.Context) (Summary, error)
	FetchPlaylist(ctx context.Context, id string) ([]Track, error)
	Name() string
}

// HTTPSource reads /playlists/index and /playlists/{id} from a catalog server.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns a source rooted at baseURL (scheme and host).
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *HTTPSource) Name() string {
	return "http " + s.baseURL
}

func (s *HTTPSource) FetchSummary(ctx context.Context) (Summary, error) {
	var summary Summary
	if err := s.get(ctx, IndexName, &summary); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (s *HTTPSource) FetchPlaylist(ctx context.Context, id string) ([]Track, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: bad id %q", ErrNotFound, id)
	}
	var tracks []Track
	if err := s.get(ctx, id, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func (s *HTTPSource) get(ctx context.Context, name string, out any) error {
	reqURL := s.baseURL + "/playlists/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read catalog response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse catalog response: %w", err)
	}
	return nil
}

// DirSource reads the files written by Compile.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Name() string {
	return "dir " + s.dir
}

func (s *DirSource) FetchSummary(ctx context.Context) (Summary, error) {
	var summary Summary
	if err := s.read(ctx, IndexName, &summary); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (s *DirSource) FetchPlaylist(ctx context.Context, id string) ([]Track, error) {
	if !ValidID(id) || id == IndexName {
		return nil, fmt.Errorf("%w: bad id %q", ErrNotFound, id)
	}
	var tracks []Track
	if err := s.read(ctx, id, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func (s *DirSource) read(ctx context.Context, name string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
