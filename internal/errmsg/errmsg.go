// Package errmsg formats check failures for the terminal, adding possible
// causes and actionable suggestions below the error itself.
package errmsg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
)

// ErrorContext provides additional context for error formatting
type ErrorContext struct {
	Name          string // Artifact being checked
	Authenticated bool   // Whether a token was sent to the source
	Now           func() time.Time
}

func (c *ErrorContext) now() time.Time {
	if c != nil && c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

type section struct {
	causes      []string
	suggestions []string
}

// Format returns err's message followed by "Possible causes" and
// "Suggestions" sections. Errors that are not check errors are returned
// unchanged. ctx may be nil.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	var ce *checkerr.Error
	if !errors.As(err, &ce) {
		return err.Error()
	}

	s := sections(ce, ctx)

	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")
	if len(s.causes) > 0 {
		sb.WriteString("\nPossible causes:\n")
		for _, c := range s.causes {
			fmt.Fprintf(&sb, "  - %s\n", c)
		}
	}
	if len(s.suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, c := range s.suggestions {
			fmt.Fprintf(&sb, "  - %s\n", c)
		}
	}
	return sb.String()
}

func sections(ce *checkerr.Error, ctx *ErrorContext) section {
	name := "<name>"
	if ctx != nil && ctx.Name != "" {
		name = ctx.Name
	}

	switch ce.Kind {
	case checkerr.KindInvalidVersion:
		if ce.Side == checkerr.SideLatest {
			return section{
				causes: []string{
					"The project tags releases with names that are not semantic versions",
					"The latest release is a nightly or date-based build",
				},
				suggestions: []string{ce.Suggestion()},
			}
		}
		return section{
			causes: []string{"The current version is not in MAJOR.MINOR.PATCH form"},
			suggestions: []string{
				ce.Suggestion(),
				"Run 'updatecheck compare <version> 0.0.0' to see how a version parses",
			},
		}

	case checkerr.KindInvalidConfiguration:
		return section{
			causes: []string{
				"The owner or repository name contains unsupported characters",
				"The Gitea base URL is not an absolute http(s) URL",
			},
			suggestions: []string{
				"Use a base URL like https://codeberg.org (no query string or fragment)",
				ce.Suggestion(),
			},
		}

	case checkerr.KindNotFound:
		return section{
			causes: []string{
				"Typo in the package, owner or repository name",
				"The repository is private",
				"The project has not published any release or tag",
			},
			suggestions: []string{
				ce.Suggestion(),
				fmt.Sprintf("Open the project page in a browser to confirm %s exists", name),
			},
		}

	case checkerr.KindRateLimited:
		s := section{
			causes: []string{"Too many requests to the API"},
		}
		if ctx == nil || !ctx.Authenticated {
			s.causes = append(s.causes, "Unauthenticated requests have lower limits")
			s.suggestions = append(s.suggestions, "Set GITHUB_TOKEN (or GITEA_TOKEN) to increase the rate limit")
		}
		if !ce.RetryAt.IsZero() {
			wait := ce.RetryAt.Sub(ctx.now()).Round(time.Minute)
			if wait < time.Minute {
				wait = time.Minute
			}
			s.suggestions = append(s.suggestions, fmt.Sprintf("The limit resets in about %s", wait))
		} else {
			s.suggestions = append(s.suggestions, "Wait a few minutes before retrying")
		}
		return s

	case checkerr.KindMalformedResponse:
		return section{
			causes: []string{
				"The URL points at a web page or proxy instead of the API",
				"The service changed its response format",
			},
			suggestions: []string{ce.Suggestion()},
		}

	case checkerr.KindNetwork:
		return networkSection(ce)
	}

	return section{suggestions: []string{"Try again in a few minutes"}}
}

func networkSection(ce *checkerr.Error) section {
	s := section{suggestions: []string{ce.Suggestion()}}

	switch ce.Cause {
	case checkerr.CauseTimeout:
		s.causes = []string{"Request timed out", "Slow or unstable network connection"}
		s.suggestions = append(s.suggestions, "Raise UPDATECHECK_API_TIMEOUT if you are behind a slow proxy")
	case checkerr.CauseDNS:
		s.causes = []string{"DNS resolution failure"}
	case checkerr.CauseConnection:
		s.causes = []string{"Network connectivity issue", "Firewall or proxy blocking the connection"}
	case checkerr.CauseTLS:
		s.causes = []string{"Certificate verification failed", "A proxy is intercepting TLS"}
	case checkerr.CauseHTTPStatus:
		s.causes = []string{"Service temporarily unavailable"}
	case checkerr.CauseCanceled:
		return section{causes: []string{"The check was interrupted"}}
	default:
		s.causes = []string{"Network connectivity issue", "Service temporarily unavailable"}
	}
	return s
}
