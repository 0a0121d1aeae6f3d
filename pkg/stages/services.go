package stages

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Fetcher provides the content of a download location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

type MergeRequest struct {
	Client string `json:"client"`
	Server string `json:"server"`
	Config string `json:"config"`
	Out    string `json:"out"`
}

// Merger combines a client and a server archive. For identical
// inputs the result must be byte-identical.
type Merger interface {
	Merge(ctx context.Context, fs vfs.FileSystem, req MergeRequest) error
}

type PatchRequest struct {
	In      string `json:"in"`
	Patches string `json:"patches"`
	Out     string `json:"out"`
}

// Patcher applies binary patches to an archive.
type Patcher interface {
	Patch(ctx context.Context, fs vfs.FileSystem, req PatchRequest) error
}

type RemapRequest struct {
	In           string   `json:"in"`
	Out          string   `json:"out"`
	Srg          string   `json:"srg"`
	Exceptor     string   `json:"exceptor"`
	ExceptorCfg  string   `json:"exceptorCfg"`
	Transformers []string `json:"transformers,omitempty"`
}

// Remapper renames the symbols of an archive according to
// a mapping table and applies the access transformers.
type Remapper interface {
	Remap(ctx context.Context, fs vfs.FileSystem, req RemapRequest) error
}

// Services are the external algorithms used by the stages.
// Fetcher and Merger have defaults, Patcher and Remapper must
// be provided if stages requiring them are executed.
type Services struct {
	Fetcher  Fetcher
	Merger   Merger
	Patcher  Patcher
	Remapper Remapper
}

func (s *Services) fetcher(fs vfs.FileSystem) Fetcher {
	if s.Fetcher != nil {
		return s.Fetcher
	}
	return &URLFetcher{FS: fs}
}

func (s *Services) merger() Merger {
	if s.Merger != nil {
		return s.Merger
	}
	return ArchiveMerger{}
}

func (s *Services) patcher() (Patcher, error) {
	if s.Patcher == nil {
		return nil, fmt.Errorf("patcher: %w", ErrNoService)
	}
	return s.Patcher, nil
}

func (s *Services) remapper() (Remapper, error) {
	if s.Remapper == nil {
		return nil, fmt.Errorf("remapper: %w", ErrNoService)
	}
	return s.Remapper, nil
}

////////////////////////////////////////////////////////////////////////////////

// URLFetcher serves file URLs from a filesystem and http(s)
// URLs with an http client. Plain paths are handled like
// file URLs.
type URLFetcher struct {
	FS     vfs.FileSystem
	Client *http.Client
}

var _ Fetcher = (*URLFetcher)(nil)

func (f *URLFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid download location %q: %w", location, err)
	}
	switch u.Scheme {
	case "", "file":
		if f.FS == nil {
			return nil, fmt.Errorf("no filesystem for %q", location)
		}
		return f.FS.Open(u.Path)
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		client := f.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("download %q: %s", location, resp.Status)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q", strings.ToLower(u.Scheme))
	}
}
