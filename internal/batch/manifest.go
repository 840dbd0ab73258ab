// Package batch checks many artifacts concurrently from a TOML manifest
// and summarizes the outcomes in manifest order.
package batch

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
	"github.com/tsukumogami/updatecheck/internal/source"
)

// Target is one artifact to check.
//
//	[[target]]
//	name = "ripgrep"
//	source = "github"
//	owner = "BurntSushi"
//	current = "14.0.0"
type Target struct {
	Name    string `toml:"name" json:"name"`
	Source  string `toml:"source,omitempty" json:"source,omitempty"`
	Owner   string `toml:"owner,omitempty" json:"owner,omitempty"`
	BaseURL string `toml:"base_url,omitempty" json:"base_url,omitempty"`
	Current string `toml:"current" json:"current"`
}

// Resolve turns the target into a Source and artifact name. An empty
// source means crates.io unless the name has an "owner/repo" form, which
// means GitHub. The owner may be given in the name instead of Owner.
func (t Target) Resolve() (source.Source, string, error) {
	name := strings.TrimSpace(t.Name)
	owner := strings.TrimSpace(t.Owner)

	if o, n, ok := strings.Cut(name, "/"); ok {
		if owner != "" && owner != o {
			return source.Source{}, "", t.invalid(fmt.Sprintf("owner %q conflicts with %q in name", owner, o))
		}
		owner, name = o, n
	}

	kindName := t.Source
	if kindName == "" {
		kindName = "crates"
		if owner != "" {
			kindName = "github"
		}
	}
	kind, err := source.ParseKind(kindName)
	if err != nil {
		return source.Source{}, "", t.invalid(err.Error())
	}

	switch kind {
	case source.KindGitHub:
		return source.GitHub(owner), name, nil
	case source.KindGitea:
		return source.Gitea(owner, t.BaseURL), name, nil
	default:
		if owner != "" {
			return source.Source{}, "", t.invalid("crates.io targets take no owner")
		}
		return source.CratesIO(), name, nil
	}
}

// Label names the target in output, e.g. "GitHub:BurntSushi/ripgrep".
// Targets that do not resolve fall back to their raw name.
func (t Target) Label() string {
	src, name, err := t.Resolve()
	if err != nil {
		return t.Name
	}
	return src.Describe(name)
}

func (t Target) invalid(msg string) error {
	return &checkerr.Error{
		Kind:    checkerr.KindInvalidConfiguration,
		Source:  t.Name,
		Message: msg,
	}
}

// Manifest lists the targets of a batch run.
type Manifest struct {
	Targets []Target `toml:"target"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(string(data))
}

// ParseManifest decodes a manifest. Unknown keys are rejected so that a
// misspelled field does not silently select a default.
func ParseManifest(data string) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(data, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown manifest keys: %s", strings.Join(keys, ", "))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every target names an artifact and a current
// version. Source parameters are validated when the target is checked.
func (m *Manifest) Validate() error {
	if len(m.Targets) == 0 {
		return fmt.Errorf("manifest has no [[target]] entries")
	}
	var problems []string
	for i, t := range m.Targets {
		if strings.TrimSpace(t.Name) == "" {
			problems = append(problems, fmt.Sprintf("target %d: name is required", i+1))
		}
		if strings.TrimSpace(t.Current) == "" {
			problems = append(problems, fmt.Sprintf("target %d (%s): current is required", i+1, t.Name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid manifest:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
