package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// ManifestName is the file that marks a project root.
const ManifestName = "dbc.toml"

// Manifest is a decoded dbc.toml together with where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the dbc.toml layout.
type Config struct {
	Package     PackageConfig     `toml:"package"`
	Build       BuildConfig       `toml:"build"`
	Run         RunConfig         `toml:"run"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Requires is a semver constraint on the dbc tool, e.g. ">= 0.1".
	Requires string `toml:"requires"`
}

type BuildConfig struct {
	Sources []string `toml:"sources"`
	Jobs    int      `toml:"jobs"`
}

type RunConfig struct {
	// Main names the entry method as "Class.method".
	Main string `toml:"main"`
}

type DiagnosticsConfig struct {
	Max    int    `toml:"max"`
	Notes  bool   `toml:"notes"`
	Format string `toml:"format"`
}

// LoadManifest finds dbc.toml from startDir upwards and decodes it.
// ok is false when there is no manifest.
func LoadManifest(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := DecodeConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// DecodeConfig reads and validates one manifest file.
func DecodeConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if cfg.Package.Requires != "" {
		if _, err := semver.NewConstraint(cfg.Package.Requires); err != nil {
			return Config{}, fmt.Errorf("%s: bad [package].requires %q: %w", path, cfg.Package.Requires, err)
		}
	}
	if cfg.Run.Main != "" {
		if _, _, err := SplitEntry(cfg.Run.Main); err != nil {
			return Config{}, fmt.Errorf("%s: [run].main: %w", path, err)
		}
	}
	switch cfg.Diagnostics.Format {
	case "", "pretty", "short", "json":
	default:
		return Config{}, fmt.Errorf("%s: [diagnostics].format must be pretty, short or json", path)
	}
	if cfg.Diagnostics.Max < 0 || cfg.Build.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: limits must not be negative", path)
	}
	return cfg, nil
}

// ErrToolVersion is returned when the running tool does not satisfy
// [package].requires.
var ErrToolVersion = errors.New("tool version does not satisfy the project")

// CheckTool verifies toolVersion against [package].requires. An empty
// constraint accepts anything; an unparsable tool version is accepted too,
// so development builds are never locked out.
func (c Config) CheckTool(toolVersion string) error {
	if c.Package.Requires == "" {
		return nil
	}
	cons, err := semver.NewConstraint(c.Package.Requires)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(toolVersion)
	if err != nil {
		return nil
	}
	// prereleases such as 0.1.0-dev satisfy constraints on their release
	if v.Prerelease() != "" {
		rel, relErr := v.SetPrerelease("")
		if relErr == nil {
			v = &rel
		}
	}
	if ok, errs := cons.Validate(v); !ok {
		msg := ""
		if len(errs) > 0 {
			msg = ": " + errs[0].Error()
		}
		return fmt.Errorf("%w: dbc %s, project requires %s%s", ErrToolVersion, toolVersion, c.Package.Requires, msg)
	}
	return nil
}

// SourcePaths returns the configured source roots made absolute against
// the manifest directory, or the root itself when none are listed.
func (m *Manifest) SourcePaths() []string {
	if m == nil {
		return nil
	}
	if len(m.Config.Build.Sources) == 0 {
		return []string{m.Root}
	}
	out := make([]string, 0, len(m.Config.Build.Sources))
	for _, s := range m.Config.Build.Sources {
		if filepath.IsAbs(s) {
			out = append(out, s)
			continue
		}
		out = append(out, filepath.Join(m.Root, filepath.FromSlash(s)))
	}
	return out
}

// SplitEntry splits "Class.method".
func SplitEntry(entry string) (class, method string, err error) {
	entry = strings.TrimSpace(entry)
	i := strings.LastIndexByte(entry, '.')
	if i <= 0 || i == len(entry)-1 {
		return "", "", fmt.Errorf("entry %q must have the form Class.method", entry)
	}
	return entry[:i], entry[i+1:], nil
}

// DefaultManifest is what dbc init writes.
func DefaultManifest(name string) string {
	return fmt.Sprintf(`[package]
name = %q
requires = ">= 0.1.0"

[build]
sources = ["src"]

[run]
main = "Main.main"

[diagnostics]
max = 100
notes = false
format = "pretty"
`, name)
}

// writeFileIfAbsent is used by Init; existing files are never overwritten.
func writeFileIfAbsent(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	return true, os.WriteFile(path, data, 0o644)
}
