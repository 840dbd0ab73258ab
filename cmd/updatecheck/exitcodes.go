package main

import (
	"os"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
)

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 2

	// ExitInvalidVersion indicates a version string did not parse
	ExitInvalidVersion = 3

	// ExitNotFound indicates the artifact or release does not exist
	ExitNotFound = 4

	// ExitNetwork indicates a network error or unexpected HTTP status
	ExitNetwork = 5

	// ExitRateLimited indicates the source throttled the request
	ExitRateLimited = 6

	// ExitMalformedResponse indicates the source returned unexpected data
	ExitMalformedResponse = 7

	// ExitInvalidConfiguration indicates bad source parameters
	ExitInvalidConfiguration = 8

	// ExitUpdateAvailable is returned with --fail-on-update when a newer
	// release exists
	ExitUpdateAvailable = 10
)

// exitCodeFor maps a check error to its exit code.
func exitCodeFor(err error) int {
	switch checkerr.KindOf(err) {
	case checkerr.KindInvalidVersion:
		return ExitInvalidVersion
	case checkerr.KindNotFound:
		return ExitNotFound
	case checkerr.KindNetwork:
		return ExitNetwork
	case checkerr.KindRateLimited:
		return ExitRateLimited
	case checkerr.KindMalformedResponse:
		return ExitMalformedResponse
	case checkerr.KindInvalidConfiguration:
		return ExitInvalidConfiguration
	default:
		if err == nil {
			return ExitSuccess
		}
		return ExitGeneral
	}
}

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}
