package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tsukumogami/updatecheck"
	"github.com/tsukumogami/updatecheck/internal/buildinfo"
	"github.com/tsukumogami/updatecheck/internal/config"
	"github.com/tsukumogami/updatecheck/internal/errmsg"
	"github.com/tsukumogami/updatecheck/internal/log"
	"github.com/tsukumogami/updatecheck/internal/progress"
	"github.com/tsukumogami/updatecheck/internal/render"
	"github.com/tsukumogami/updatecheck/internal/source"
	"github.com/tsukumogami/updatecheck/internal/transport"
	"github.com/tsukumogami/updatecheck/internal/userconfig"
)

// newTransport builds the transport for one command run. Tests replace it.
var newTransport = func() transport.Transport {
	return transport.NewHTTP(transport.WithTimeout(config.GetAPITimeout()))
}

// settings merges config.toml with the environment. Environment
// variables win over the file.
type settings struct {
	user        *userconfig.Config
	githubToken string
	giteaToken  string
}

func loadSettings() (*settings, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, err
	}
	s := &settings{
		user:        cfg,
		githubToken: config.GetGitHubToken(),
		giteaToken:  config.GetGiteaToken(),
	}
	if s.githubToken == "" {
		s.githubToken, _ = cfg.Secret("github_token")
	}
	if s.giteaToken == "" {
		s.giteaToken, _ = cfg.Secret("gitea_token")
	}
	return s, nil
}

// checkOptions returns the library options for checks through t.
func (s *settings) checkOptions(t transport.Transport) []updatecheck.Option {
	opts := []updatecheck.Option{
		updatecheck.WithTransport(t),
		updatecheck.WithUserAgent(buildinfo.UserAgent()),
		updatecheck.WithLogger(log.Default()),
	}
	if s.githubToken != "" {
		opts = append(opts, updatecheck.WithGitHubToken(s.githubToken))
	}
	if s.giteaToken != "" {
		opts = append(opts, updatecheck.WithGiteaToken(s.giteaToken))
	}
	if s.user.GitHubAPIURL != "" {
		opts = append(opts, updatecheck.WithGitHubAPIURL(s.user.GitHubAPIURL))
	}
	if s.user.CratesIOURL != "" {
		opts = append(opts, updatecheck.WithCratesIORegistry(s.user.CratesIOURL))
	}
	return opts
}

// authenticated reports whether requests to src carry a token.
func (s *settings) authenticated(src source.Source) bool {
	switch src.Kind {
	case source.KindGitHub:
		return s.githubToken != ""
	case source.KindGitea:
		return s.giteaToken != ""
	}
	return false
}

// format returns the output format from the flag, else from config.toml.
func (s *settings) format(flag string) (render.Format, error) {
	if flag == "" {
		flag = s.user.Format
	}
	return render.ParseFormat(flag)
}

// renderOptions resolves colour, icons and changelog length for out.
func (s *settings) renderOptions(out io.Writer, fullChangelog bool) render.Options {
	mode := colorFlag
	if mode == "" {
		mode = s.user.Color
	}
	return render.Options{
		Color:             useColor(mode, out),
		Icons:             s.user.Icons,
		MaxChangelogLines: s.user.ChangelogLines,
		FullChangelog:     fullChangelog || s.user.ChangelogLines == 0,
	}
}

// useColor decides whether to style output. "auto" colours terminals
// unless NO_COLOR is set.
func useColor(mode string, out io.Writer) bool {
	switch strings.ToLower(mode) {
	case userconfig.ColorAlways:
		return true
	case userconfig.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return progress.IsTerminal(out)
}

// printError prints an error to w with causes and suggestions if available.
func printError(w io.Writer, err error, ctx *errmsg.ErrorContext) {
	fmt.Fprintf(w, "Error: %s\n", strings.TrimRight(errmsg.Format(err, ctx), "\n"))
}
