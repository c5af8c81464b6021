// Package version compares release tags and queries GitHub for the latest
// published palimpsest release.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	// Response bodies are bounded; the release payload is small and error
	// bodies only feed a message.
	maxBodySize      = 64 * 1024
	maxErrorBodySize = 1024
)

var (
	// ErrReleaseLookup wraps any non-200 answer from the releases API.
	ErrReleaseLookup = errors.New("release lookup failed")

	// ErrBadRepoName rejects owner/repo values the API path cannot hold.
	ErrBadRepoName = errors.New("invalid owner or repository name")
)

var repoNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Release is the subset of the GitHub release payload the CLI consumes.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// Client queries the GitHub releases API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// NewClient builds a release client with the given options applied.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

//nolint:gochecknoglobals // package-level convenience client
var defaultClient = NewClient()

// GetLatestRelease fetches the latest release of owner/repo with the default
// client.
func GetLatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	return defaultClient.GetLatestRelease(ctx, owner, repo)
}

// GetLatestRelease fetches the latest published release of owner/repo.
func (c *Client) GetLatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	if owner == "" || repo == "" || !repoNamePattern.MatchString(owner) || !repoNamePattern.MatchString(repo) {
		return nil, ErrBadRepoName
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("palimpsest (%s/%s)", runtime.GOOS, runtime.GOARCH))
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: status %d: %s", ErrReleaseLookup, resp.StatusCode, string(body))
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &release, nil
}

// CompareVersions orders two version strings: 1 when a is newer, -1 when b
// is newer, 0 when equal. Anything that is not release-shaped, such as
// "dev" or a bare commit hash, sorts before every tagged release.
func CompareVersions(a, b string) int {
	pa, aok := releaseParts(a)
	pb, bok := releaseParts(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	for i := 0; i < 3; i++ {
		va, vb := 0, 0
		if i < len(pa) {
			va = pa[i]
		}
		if i < len(pb) {
			vb = pb[i]
		}
		if va != vb {
			if va > vb {
				return 1
			}
			return -1
		}
	}
	return 0
}

// IsNewerVersion reports whether latest is a newer release than current.
func IsNewerVersion(current, latest string) bool {
	return CompareVersions(latest, current) > 0
}

// releaseParts parses "v1.2.3"-style tags into numeric components,
// discarding pre-release and build suffixes. ok is false for anything that
// is not a tagged release.
func releaseParts(v string) ([]int, bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}
	if v == "" {
		return nil, false
	}

	parts := strings.Split(v, ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}
