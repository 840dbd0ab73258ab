package functional

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

type release struct {
	tag   string
	notes string
}

// mockAPI serves the crates.io, GitHub and Gitea endpoints the CLI calls.
// GitHub lives under /github and Gitea under /gitea so one server can play
// all three.
type mockAPI struct {
	server *httptest.Server

	mu          sync.Mutex
	crates      map[string]string
	ghReleases  map[string]release
	ghTags      map[string]string
	gitea       map[string]release
	rateLimited bool
	requests    int
}

func newMockAPI() *mockAPI {
	m := &mockAPI{
		crates:     make(map[string]string),
		ghReleases: make(map[string]release),
		ghTags:     make(map[string]string),
		gitea:      make(map[string]release),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/crates/{name}", m.crate)
	mux.HandleFunc("GET /github/repos/{owner}/{repo}/releases/latest", m.gitHubRelease)
	mux.HandleFunc("GET /github/repos/{owner}/{repo}/tags", m.gitHubTags)
	mux.HandleFunc("GET /gitea/api/v1/repos/{owner}/{repo}/releases/latest", m.giteaRelease)
	mux.HandleFunc("GET /gitea/api/v1/repos/{owner}/{repo}/tags", m.giteaTags)

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests++
		m.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return m
}

func (m *mockAPI) URL() string       { return m.server.URL }
func (m *mockAPI) GitHubURL() string { return m.server.URL + "/github" }
func (m *mockAPI) GiteaURL() string  { return m.server.URL + "/gitea" }
func (m *mockAPI) Close()            { m.server.Close() }

func (m *mockAPI) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func (m *mockAPI) crate(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	version, ok := m.crates[r.PathValue("name")]
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": []map[string]string{{"detail": "Not Found"}}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"crate":    map[string]string{"name": r.PathValue("name"), "max_version": version},
		"versions": []map[string]any{{"num": version, "yanked": false}},
	})
}

func (m *mockAPI) gitHubRelease(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("owner") + "/" + r.PathValue("repo")

	m.mu.Lock()
	limited := m.rateLimited
	rel, ok := m.ghReleases[repo]
	m.mu.Unlock()

	if limited {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(30*time.Minute).Unix(), 10))
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "API rate limit exceeded for 127.0.0.1."})
		return
	}
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"tag_name": rel.tag,
		"body":     rel.notes,
		"html_url": fmt.Sprintf("https://github.com/%s/releases/tag/%s", repo, rel.tag),
	})
}

func (m *mockAPI) gitHubTags(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	tag, ok := m.ghTags[r.PathValue("owner")+"/"+r.PathValue("repo")]
	m.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, []map[string]any{{"name": tag, "commit": map[string]string{"sha": "0123abcd"}}})
}

func (m *mockAPI) giteaRelease(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("owner") + "/" + r.PathValue("repo")
	m.mu.Lock()
	rel, ok := m.gitea[repo]
	m.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"tag_name": rel.tag,
		"body":     rel.notes,
		"html_url": fmt.Sprintf("%s/%s/releases/tag/%s", m.GiteaURL(), repo, rel.tag),
	})
}

func (m *mockAPI) giteaTags(w http.ResponseWriter, r *http.Request) {
	notFound(w)
}
