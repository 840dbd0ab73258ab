// Package checkerr defines the structured failure returned by an update check.
// A check yields exactly one of an update result or an *Error.
package checkerr

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Kind classifies check failures.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors that are not *Error.
	KindUnknown Kind = iota
	// KindInvalidVersion indicates a version string did not parse (see Side).
	KindInvalidVersion
	// KindInvalidConfiguration indicates malformed source parameters, e.g. a bad base URL.
	KindInvalidConfiguration
	// KindNotFound indicates the artifact, owner or release does not exist at the source.
	KindNotFound
	// KindNetwork indicates a transport failure or an unexpected HTTP status.
	KindNetwork
	// KindRateLimited indicates the source throttled the request (HTTP 429 and equivalents).
	KindRateLimited
	// KindMalformedResponse indicates a response that could not be decoded into the expected shape.
	KindMalformedResponse
)

// String returns the human label used in one-line error output.
func (k Kind) String() string {
	switch k {
	case KindInvalidVersion:
		return "invalid version"
	case KindInvalidConfiguration:
		return "invalid configuration"
	case KindNotFound:
		return "not found"
	case KindNetwork:
		return "network error"
	case KindRateLimited:
		return "rate limited"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "error"
	}
}

// Side tells which version string failed to parse.
type Side int

const (
	SideNone Side = iota
	SideCurrent
	SideLatest
)

func (s Side) String() string {
	switch s {
	case SideCurrent:
		return "current"
	case SideLatest:
		return "latest"
	default:
		return ""
	}
}

// Cause refines KindNetwork failures for suggestions and logging.
type Cause int

const (
	CauseOther Cause = iota
	CauseTimeout
	CauseDNS
	CauseConnection
	CauseTLS
	CauseCanceled
	CauseHTTPStatus
)

func (c Cause) String() string {
	switch c {
	case CauseTimeout:
		return "timeout"
	case CauseDNS:
		return "dns"
	case CauseConnection:
		return "connection"
	case CauseTLS:
		return "tls"
	case CauseCanceled:
		return "canceled"
	case CauseHTTPStatus:
		return "http status"
	default:
		return "other"
	}
}

// Error provides structured information about a failed check.
type Error struct {
	Kind    Kind
	Side    Side      // Set for KindInvalidVersion
	Cause   Cause     // Set for KindNetwork
	Source  string    // Source description, e.g. "crates.io:serde" or "GitHub:serde-rs/serde"
	Message string    // Human-readable message
	RetryAt time.Time // Set for KindRateLimited when the source reports a reset time
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error for error chain support
func (e *Error) Unwrap() error {
	return e.Err
}

// Suggestion returns an actionable hint for the user, or "" if none applies.
func (e *Error) Suggestion() string {
	switch e.Kind {
	case KindInvalidVersion:
		if e.Side == SideLatest {
			return "The source published a tag that is not a semantic version; check the release naming"
		}
		return "Use a MAJOR.MINOR.PATCH version such as 1.2.3 (an optional leading v is accepted)"
	case KindInvalidConfiguration:
		return "Check the source parameters (owner, repository name, base URL)"
	case KindNotFound:
		return "Verify the package, owner and repository names are spelled correctly"
	case KindRateLimited:
		if !e.RetryAt.IsZero() {
			wait := time.Until(e.RetryAt).Round(time.Minute)
			if wait < time.Minute {
				wait = time.Minute
			}
			return fmt.Sprintf("Try again in %s, or authenticate for higher limits", wait)
		}
		return "Wait a few minutes before trying again, or authenticate for higher limits"
	case KindMalformedResponse:
		return "The source returned unexpected data; check the base URL points at the API"
	case KindNetwork:
		switch e.Cause {
		case CauseTimeout:
			return "Check your internet connection and try again"
		case CauseDNS:
			return "Check your DNS settings and internet connection"
		case CauseConnection:
			return "The service may be down or blocked. Check if you can access it in a browser"
		case CauseTLS:
			return "There may be a certificate issue. Check your system time is correct"
		case CauseHTTPStatus:
			return "The service returned an unexpected status; try again later"
		}
		return "Check your internet connection and try again"
	default:
		return ""
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Classify examines a transport error and returns the most specific Cause.
func Classify(err error) Cause {
	if err == nil {
		return CauseOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CauseTimeout
	}
	if errors.Is(err, context.Canceled) {
		return CauseCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return CauseTimeout
		}
		return CauseDNS
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return CauseTLS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return CauseTimeout
		}
		return CauseConnection
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return CauseTimeout
		}
		msg := urlErr.Err.Error()
		if strings.Contains(msg, "certificate") ||
			strings.Contains(msg, "tls") ||
			strings.Contains(msg, "x509") {
			return CauseTLS
		}
		return Classify(urlErr.Err)
	}

	return CauseOther
}

// WrapTransport builds a KindNetwork error from a transport failure.
func WrapTransport(err error, source, message string) *Error {
	return &Error{
		Kind:    KindNetwork,
		Cause:   Classify(err),
		Source:  source,
		Message: message,
		Err:     err,
	}
}
