package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type giteaRelease struct {
	TagName string `json:"tag_name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

type giteaTag struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type giteaProvider struct {
	f       *Fetcher
	baseURL string // normalized, no trailing slash
	owner   string
	repo    string
}

func (p *giteaProvider) SourceDescription() string {
	return "Gitea:" + p.owner + "/" + p.repo
}

func (p *giteaProvider) header() http.Header {
	h := make(http.Header)
	if p.f.giteaToken != "" {
		h.Set("Authorization", "token "+p.f.giteaToken)
	}
	return h
}

func (p *giteaProvider) repoAPI(parts ...string) string {
	base, _ := url.Parse(p.baseURL)
	return base.JoinPath(append([]string{"api", "v1", "repos", p.owner, p.repo}, parts...)...).String()
}

// FetchLatest returns the latest release, or the newest tag when the
// repository has no releases.
//
// API: {base}/api/v1/repos/{owner}/{repo}/releases/latest
func (p *giteaProvider) FetchLatest(ctx context.Context) (*RawRelease, error) {
	desc := p.SourceDescription()

	resp, err := p.f.get(ctx, desc, p.repoAPI("releases", "latest"), p.header())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		p.f.logger.Debug("no releases, falling back to tags", "source", desc)
		return p.latestTag(ctx)
	}
	if err := p.f.statusError(resp, desc, "latest release"); err != nil {
		return nil, err
	}

	var rel giteaRelease
	if err := decodeJSON(resp, desc, &rel); err != nil {
		return nil, err
	}
	if rel.TagName == "" {
		return nil, malformed(desc, "release has no tag_name")
	}

	link := rel.HTMLURL
	if link == "" {
		link = fmt.Sprintf("%s/%s/%s/releases/tag/%s", p.baseURL, p.owner, p.repo, url.PathEscape(rel.TagName))
	}
	return &RawRelease{
		Version:   rel.TagName,
		Changelog: rel.Body,
		URL:       link,
	}, nil
}

func (p *giteaProvider) latestTag(ctx context.Context) (*RawRelease, error) {
	desc := p.SourceDescription()

	resp, err := p.f.get(ctx, desc, p.repoAPI("tags")+"?limit=1", p.header())
	if err != nil {
		return nil, err
	}
	if err := p.f.statusError(resp, desc, fmt.Sprintf("repository %s/%s", p.owner, p.repo)); err != nil {
		return nil, err
	}

	var tags []giteaTag
	if err := decodeJSON(resp, desc, &tags); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, notFound(desc, "repository has no releases or tags")
	}
	if tags[0].Name == "" {
		return nil, malformed(desc, "tag has no name")
	}

	return &RawRelease{
		Version:   tags[0].Name,
		Changelog: tags[0].Message,
		URL:       fmt.Sprintf("%s/%s/%s/src/tag/%s", p.baseURL, p.owner, p.repo, url.PathEscape(tags[0].Name)),
	}, nil
}
