package source

import (
	"context"
	"net/url"
)

// cratesIOCrateResponse is the subset of GET /api/v1/crates/{name} we use.
type cratesIOCrateResponse struct {
	Crate *struct {
		Name       string `json:"name"`
		MaxVersion string `json:"max_version"`
	} `json:"crate"`
	Versions []struct {
		Num    string `json:"num"`
		Yanked bool   `json:"yanked"`
	} `json:"versions"`
}

type cratesIOProvider struct {
	f    *Fetcher
	name string
}

func (p *cratesIOProvider) SourceDescription() string {
	return "crates.io:" + p.name
}

// FetchLatest returns the crate's max_version. crates.io has no release
// notes, so Changelog is always empty.
//
// API: https://crates.io/api/v1/crates/<crate>
func (p *cratesIOProvider) FetchLatest(ctx context.Context) (*RawRelease, error) {
	desc := p.SourceDescription()

	base, err := url.Parse(p.f.cratesIOURL)
	if err != nil {
		return nil, invalidConfig(desc, "invalid registry URL", err)
	}
	apiURL := base.JoinPath("api", "v1", "crates", p.name)

	resp, err := p.f.get(ctx, desc, apiURL.String(), nil)
	if err != nil {
		return nil, err
	}
	if err := p.f.statusError(resp, desc, "crate "+p.name); err != nil {
		return nil, err
	}

	var body cratesIOCrateResponse
	if err := decodeJSON(resp, desc, &body); err != nil {
		return nil, err
	}
	if body.Crate == nil {
		return nil, malformed(desc, "response has no crate object")
	}

	latest := body.Crate.MaxVersion
	if latest == "" {
		// Older registry mirrors omit max_version; versions are newest first.
		for _, v := range body.Versions {
			if !v.Yanked && v.Num != "" {
				latest = v.Num
				break
			}
		}
	}
	if latest == "" {
		return nil, notFound(desc, "no published versions found for crate "+p.name)
	}

	return &RawRelease{
		Version: latest,
		URL:     base.JoinPath("crates", p.name).String(),
	}, nil
}
