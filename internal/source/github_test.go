package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
	"github.com/tsukumogami/updatecheck/internal/testutil"
	"github.com/tsukumogami/updatecheck/internal/transport"
)

const (
	ghReleaseURL = "https://api.github.com/repos/serde-rs/serde/releases/latest"
	ghTagsURL    = "https://api.github.com/repos/serde-rs/serde/tags?per_page=1"
)

func fetchGitHub(t *testing.T, fake *testutil.FakeTransport, opts ...Option) (*RawRelease, error) {
	t.Helper()
	p, err := NewFetcher(fake, opts...).NewProvider(GitHub("serde-rs"), "serde")
	require.NoError(t, err)
	return p.FetchLatest(context.Background())
}

func TestGitHub_LatestRelease(t *testing.T) {
	fake := testutil.NewFakeTransport().On(ghReleaseURL, testutil.JSON(`{
		"tag_name": "v1.0.219",
		"body": "## What's Changed\n- Fix derive on packed structs",
		"html_url": "https://github.com/serde-rs/serde/releases/tag/v1.0.219"
	}`))

	rel, err := fetchGitHub(t, fake)
	require.NoError(t, err)

	assert.Equal(t, "v1.0.219", rel.Version)
	assert.Equal(t, "## What's Changed\n- Fix derive on packed structs", rel.Changelog)
	assert.Equal(t, "https://github.com/serde-rs/serde/releases/tag/v1.0.219", rel.URL)
	assert.Equal(t, []string{ghReleaseURL}, fake.URLs())
	assert.Empty(t, fake.Calls()[0].Header.Get("Authorization"))
}

func TestGitHub_EmptyBodyIsAbsentChangelog(t *testing.T) {
	fake := testutil.NewFakeTransport().On(ghReleaseURL, testutil.JSON(`{"tag_name": "1.0.0", "html_url": "u"}`))

	rel, err := fetchGitHub(t, fake)
	require.NoError(t, err)
	assert.False(t, rel.HasChangelog())
}

func TestGitHub_FallsBackToTags(t *testing.T) {
	fake := testutil.NewFakeTransport().
		On(ghReleaseURL, testutil.Status(http.StatusNotFound)).
		On(ghTagsURL, testutil.JSON(`[{"name": "v1.0.100", "commit": {"sha": "abc"}}]`))

	rel, err := fetchGitHub(t, fake)
	require.NoError(t, err)

	assert.Equal(t, "v1.0.100", rel.Version)
	assert.Empty(t, rel.Changelog)
	assert.Equal(t, "https://github.com/serde-rs/serde/releases/tag/v1.0.100", rel.URL)
	assert.Equal(t, []string{ghReleaseURL, ghTagsURL}, fake.URLs())
}

func TestGitHub_NoReleasesNoTags(t *testing.T) {
	fake := testutil.NewFakeTransport().
		On(ghReleaseURL, testutil.Status(http.StatusNotFound)).
		On(ghTagsURL, testutil.JSON(`[]`))

	_, err := fetchGitHub(t, fake)
	assert.Equal(t, checkerr.KindNotFound, checkerr.KindOf(err))
}

func TestGitHub_RepositoryNotFound(t *testing.T) {
	// Both endpoints 404 when the repository does not exist.
	fake := testutil.NewFakeTransport()

	_, err := fetchGitHub(t, fake)
	require.Error(t, err)
	assert.Equal(t, checkerr.KindNotFound, checkerr.KindOf(err))
	assert.Contains(t, err.Error(), "serde-rs/serde")
}

func TestGitHub_RateLimited(t *testing.T) {
	reset := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	fake := testutil.NewFakeTransport().On(ghReleaseURL, testutil.Reply{
		Status: http.StatusForbidden,
		Header: http.Header{
			"Content-Type":          {"application/json"},
			"X-Ratelimit-Limit":     {"60"},
			"X-Ratelimit-Remaining": {"0"},
			"X-Ratelimit-Reset":     {strconv.FormatInt(reset.Unix(), 10)},
		},
		Body: `{"message": "API rate limit exceeded"}`,
	})

	_, err := fetchGitHub(t, fake)

	var ce *checkerr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, checkerr.KindRateLimited, ce.Kind)
	assert.True(t, reset.Equal(ce.RetryAt), "RetryAt = %v, want %v", ce.RetryAt, reset)
	assert.Contains(t, ce.Message, "GITHUB_TOKEN")
	assert.Equal(t, 1, fake.CallCount(), "no fallback after a rate limit")
}

func TestGitHub_TooManyRequests(t *testing.T) {
	fake := testutil.NewFakeTransport().On(ghReleaseURL, testutil.Reply{
		Status: http.StatusTooManyRequests,
		Header: http.Header{"Content-Type": {"application/json"}, "Retry-After": {"60"}},
		Body:   `{"message": "slow down"}`,
	})

	_, err := fetchGitHub(t, fake)

	var ce *checkerr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, checkerr.KindRateLimited, ce.Kind)
	assert.False(t, ce.RetryAt.IsZero())
}

func TestGitHub_Errors(t *testing.T) {
	tests := []struct {
		name  string
		reply testutil.Reply
		want  checkerr.Kind
	}{
		{"server error", testutil.Status(http.StatusBadGateway), checkerr.KindNetwork},
		{"html body", testutil.Reply{Status: 200, Header: http.Header{"Content-Type": {"text/html"}}, Body: "<html>"}, checkerr.KindMalformedResponse},
		{"wrong shape", testutil.JSON(`{"tag_name": 42}`), checkerr.KindMalformedResponse},
		{"missing tag", testutil.JSON(`{"body": "notes"}`), checkerr.KindMalformedResponse},
		{"unreachable", testutil.Reply{Err: &connRefused{}}, checkerr.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeTransport().On(ghReleaseURL, tt.reply)
			_, err := fetchGitHub(t, fake)
			require.Error(t, err)
			assert.Equal(t, tt.want, checkerr.KindOf(err), "error: %v", err)
			assert.Equal(t, 1, fake.CallCount())
		})
	}
}

func TestGitHub_TokenAndUserAgent(t *testing.T) {
	fake := testutil.NewFakeTransport().On(ghReleaseURL, testutil.JSON(`{"tag_name": "v1.0.0", "html_url": "u"}`))

	_, err := fetchGitHub(t, fake, WithGitHubToken("ghp_secret"), WithUserAgent("updatecheck/9.9.9"))
	require.NoError(t, err)

	call := fake.Calls()[0]
	assert.Equal(t, "Bearer ghp_secret", call.Header.Get("Authorization"))
	assert.Equal(t, "updatecheck/9.9.9", call.Header.Get("User-Agent"))
}

func TestGitHub_CustomAPIURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/repos/acme/widget/releases/latest":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"tag_name": "v2.1.0", "body": "Fixed bug", "html_url": "https://ghe.example.com/acme/widget/releases/tag/v2.1.0"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tr := transport.NewHTTP(transport.WithClient(server.Client()))
	p, err := NewFetcher(tr, WithGitHubAPIURL(server.URL+"/api/v3/")).NewProvider(GitHub("acme"), "widget")
	require.NoError(t, err)

	rel, err := p.FetchLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2.1.0", rel.Version)
	assert.Equal(t, "Fixed bug", rel.Changelog)
}
