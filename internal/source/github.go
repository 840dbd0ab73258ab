package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
)

type gitHubProvider struct {
	f     *Fetcher
	owner string
	repo  string
}

func (p *gitHubProvider) SourceDescription() string {
	return "GitHub:" + p.owner + "/" + p.repo
}

// client builds a go-github client whose requests travel through the
// Fetcher's transport, authenticated when a token is configured.
func (p *gitHubProvider) client() (*github.Client, error) {
	var rt http.RoundTripper = &roundTripper{f: p.f, desc: p.SourceDescription()}
	if p.f.githubToken != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: p.f.githubToken}),
			Base:   rt,
		}
	}

	c := github.NewClient(&http.Client{Transport: rt})
	c.UserAgent = p.f.userAgent
	if p.f.githubAPIURL != DefaultGitHubAPIURL {
		base, err := url.Parse(p.f.githubAPIURL + "/")
		if err != nil {
			return nil, err
		}
		c.BaseURL = base
	}
	return c, nil
}

// FetchLatest returns the latest published release. Repositories that only
// push tags answer 404 on releases/latest; the newest tag is used instead.
func (p *gitHubProvider) FetchLatest(ctx context.Context) (*RawRelease, error) {
	desc := p.SourceDescription()

	client, err := p.client()
	if err != nil {
		return nil, invalidConfig(desc, "invalid GitHub API URL", err)
	}

	release, _, err := client.Repositories.GetLatestRelease(ctx, p.owner, p.repo)
	if err != nil {
		if isGitHubNotFound(err) {
			p.f.logger.Debug("no releases, falling back to tags", "source", desc)
			return p.latestTag(ctx, client)
		}
		return nil, p.mapError(err, "failed to fetch latest release")
	}

	if release.GetTagName() == "" {
		return nil, malformed(desc, "release has no tag_name")
	}

	return &RawRelease{
		Version:   release.GetTagName(),
		Changelog: release.GetBody(),
		URL:       release.GetHTMLURL(),
	}, nil
}

func (p *gitHubProvider) latestTag(ctx context.Context, client *github.Client) (*RawRelease, error) {
	desc := p.SourceDescription()

	tags, _, err := client.Repositories.ListTags(ctx, p.owner, p.repo, &github.ListOptions{PerPage: 1})
	if err != nil {
		if isGitHubNotFound(err) {
			return nil, notFound(desc, fmt.Sprintf("repository %s/%s not found", p.owner, p.repo))
		}
		return nil, p.mapError(err, "failed to list tags")
	}
	if len(tags) == 0 {
		return nil, notFound(desc, "repository has no releases or tags")
	}

	name := tags[0].GetName()
	if name == "" {
		return nil, malformed(desc, "tag has no name")
	}

	return &RawRelease{
		Version: name,
		URL:     fmt.Sprintf("%s/%s/%s/releases/tag/%s", p.f.githubWebURL, p.owner, p.repo, url.PathEscape(name)),
	}, nil
}

func isGitHubNotFound(err error) bool {
	var er *github.ErrorResponse
	return errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound
}

// mapError converts go-github failures into check errors.
func (p *gitHubProvider) mapError(err error, message string) error {
	desc := p.SourceDescription()

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &checkerr.Error{
			Kind:    checkerr.KindRateLimited,
			Source:  desc,
			Message: p.rateLimitMessage(rateErr.Rate),
			RetryAt: rateErr.Rate.Reset.Time,
			Err:     err,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		ce := &checkerr.Error{
			Kind:    checkerr.KindRateLimited,
			Source:  desc,
			Message: "secondary rate limit exceeded",
			Err:     err,
		}
		if abuseErr.RetryAfter != nil {
			ce.RetryAt = p.f.now().Add(*abuseErr.RetryAfter)
		}
		return ce
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &checkerr.Error{
			Kind:    checkerr.KindMalformedResponse,
			Source:  desc,
			Message: "failed to decode response",
			Err:     err,
		}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		resp := respErr.Response
		if isRateLimited(resp.StatusCode, resp.Header) {
			return &checkerr.Error{
				Kind:    checkerr.KindRateLimited,
				Source:  desc,
				Message: fmt.Sprintf("rate limited (HTTP %d)", resp.StatusCode),
				RetryAt: retryAt(resp.Header, p.f.now()),
				Err:     err,
			}
		}
		return &checkerr.Error{
			Kind:    checkerr.KindNetwork,
			Cause:   checkerr.CauseHTTPStatus,
			Source:  desc,
			Message: fmt.Sprintf("%s: unexpected status %d", message, resp.StatusCode),
			Err:     err,
		}
	}

	return checkerr.WrapTransport(err, desc, message)
}

func (p *gitHubProvider) rateLimitMessage(rate github.Rate) string {
	if p.f.GitHubAuthenticated() {
		return fmt.Sprintf("API rate limit exceeded (%d/%d requests remaining)", rate.Remaining, rate.Limit)
	}
	return fmt.Sprintf("API rate limit exceeded (%d/%d requests remaining, unauthenticated; set GITHUB_TOKEN for higher limits)",
		rate.Remaining, rate.Limit)
}
