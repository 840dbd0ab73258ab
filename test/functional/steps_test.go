package functional

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
)

func theCrateHasLatestVersion(ctx context.Context, name, version string) error {
	api := getState(ctx).api
	api.mu.Lock()
	defer api.mu.Unlock()
	api.crates[name] = version
	return nil
}

func theGitHubRepositoryHasRelease(ctx context.Context, repo, tag string) error {
	return theGitHubRepositoryHasReleaseWithNotes(ctx, repo, tag, &godog.DocString{})
}

func theGitHubRepositoryHasReleaseWithNotes(ctx context.Context, repo, tag string, notes *godog.DocString) error {
	api := getState(ctx).api
	api.mu.Lock()
	defer api.mu.Unlock()
	api.ghReleases[repo] = release{tag: tag, notes: notes.Content}
	return nil
}

func theGitHubRepositoryHasOnlyTag(ctx context.Context, repo, tag string) error {
	api := getState(ctx).api
	api.mu.Lock()
	defer api.mu.Unlock()
	api.ghTags[repo] = tag
	return nil
}

func theGiteaRepositoryHasRelease(ctx context.Context, repo, tag string) error {
	api := getState(ctx).api
	api.mu.Lock()
	defer api.mu.Unlock()
	api.gitea[repo] = release{tag: tag}
	return nil
}

func theGitHubRateLimitIsExhausted(ctx context.Context) error {
	api := getState(ctx).api
	api.mu.Lock()
	defer api.mu.Unlock()
	api.rateLimited = true
	return nil
}

// aManifestContaining writes a batch manifest into the scenario's home.
func aManifestContaining(ctx context.Context, name string, content *godog.DocString) error {
	state := getState(ctx)
	return os.WriteFile(filepath.Join(state.homeDir, name), []byte(content.Content), 0o644)
}

// iRun executes a command string. "updatecheck" at the start is replaced by
// the test binary, {home} by the scenario home and {gitea} by the mock
// Gitea root.
func iRun(ctx context.Context, command string) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}

	command = strings.NewReplacer(
		"{home}", state.homeDir,
		"{gitea}", state.api.GiteaURL(),
	).Replace(command)

	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "updatecheck" {
		args[0] = state.binPath
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = state.homeDir
	cmd.Env = append(os.Environ(),
		"UPDATECHECK_HOME="+state.homeDir,
		"UPDATECHECK_API_TIMEOUT=5s",
		"GITHUB_TOKEN=",
		"GITEA_TOKEN=",
		"NO_COLOR=1",
	)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	state.stdout = stdout.String()
	state.stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		state.exitCode = 0
	case errors.As(err, &exitErr):
		state.exitCode = exitErr.ExitCode()
	default:
		return ctx, fmt.Errorf("command execution failed: %w", err)
	}
	return ctx, nil
}

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theOutputDoesNotContain(ctx context.Context, text string) error {
	state := getState(ctx)
	if strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout not to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theOutputIsEmpty(ctx context.Context) error {
	state := getState(ctx)
	if state.stdout != "" {
		return fmt.Errorf("expected no stdout, got:\n%s", state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr to contain %q, got:\n%s", text, state.stderr)
	}
	return nil
}

// theJSONOutputHas compares a top-level field of the JSON on stdout with
// want, formatting non-string values with %v.
func theJSONOutputHas(ctx context.Context, field, want string) error {
	state := getState(ctx)
	var doc map[string]any
	if err := json.Unmarshal([]byte(state.stdout), &doc); err != nil {
		return fmt.Errorf("stdout is not a JSON object: %v\n%s", err, state.stdout)
	}
	got, ok := doc[field]
	if !ok {
		return fmt.Errorf("JSON output has no field %q:\n%s", field, state.stdout)
	}
	if fmt.Sprintf("%v", got) != want {
		return fmt.Errorf("JSON field %q = %v, want %s", field, got, want)
	}
	return nil
}

func theAPIReceivedRequests(ctx context.Context, n int) error {
	if got := getState(ctx).api.requestCount(); got != n {
		return fmt.Errorf("mock API received %d requests, want %d", got, n)
	}
	return nil
}
