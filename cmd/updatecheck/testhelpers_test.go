package main

import (
	"testing"

	"github.com/tsukumogami/updatecheck/internal/config"
	"github.com/tsukumogami/updatecheck/internal/testutil"
	"github.com/tsukumogami/updatecheck/internal/transport"
)

// isolate points the CLI at an empty home and a fake transport, and clears
// the environment knobs the commands read.
func isolate(t *testing.T) *testutil.FakeTransport {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvGitHubToken, "")
	t.Setenv(config.EnvGiteaToken, "")
	t.Setenv(config.EnvMaxConcurrency, "")
	t.Setenv("NO_COLOR", "1")

	fake := testutil.NewFakeTransport()
	orig := newTransport
	newTransport = func() transport.Transport { return fake }

	origQuiet, origColor := quietFlag, colorFlag
	quietFlag, colorFlag = false, ""
	t.Cleanup(func() {
		newTransport = orig
		quietFlag, colorFlag = origQuiet, origColor
	})
	return fake
}
