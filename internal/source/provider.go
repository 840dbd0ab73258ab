package source

// NewProvider validates src and name and returns the Provider for them.
// Invalid parameters fail with an InvalidConfiguration error before any
// request is made.
func (f *Fetcher) NewProvider(src Source, name string) (Provider, error) {
	if err := src.Validate(name); err != nil {
		return nil, err
	}

	switch src.Kind {
	case KindCratesIO:
		return &cratesIOProvider{f: f, name: name}, nil
	case KindGitHub:
		return &gitHubProvider{f: f, owner: src.Owner, repo: name}, nil
	default:
		// Validate has already rejected unknown kinds and bad base URLs.
		base, _ := normalizeBaseURL(src.BaseURL)
		return &giteaProvider{f: f, baseURL: base, owner: src.Owner, repo: name}, nil
	}
}
