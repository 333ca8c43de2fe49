package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, DefaultManifest("stacks"))
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	if m.Root != root || m.Config.Package.Name != "stacks" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if got := m.SourcePaths(); len(got) != 1 || got[0] != filepath.Join(root, "src") {
		t.Fatalf("sources: %v", got)
	}
	if m.Config.Run.Main != "Main.main" || m.Config.Diagnostics.Max != 100 {
		t.Fatalf("defaults not decoded: %+v", m.Config)
	}
}

func TestLoadManifestAbsent(t *testing.T) {
	m, ok, err := LoadManifest(t.TempDir())
	if err != nil || ok || m != nil {
		t.Fatalf("expected no manifest, got %v %v %v", m, ok, err)
	}
}

func TestManifestSearchStopsAtRepository(t *testing.T) {
	outer := t.TempDir()
	writeManifest(t, outer, DefaultManifest("outer"))
	repo := filepath.Join(outer, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(repo, "a.dbc")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := FindManifest(file)
	if err != nil || ok {
		t.Fatalf("search must stop at the repository root: ok=%v err=%v", ok, err)
	}
	writeManifest(t, repo, DefaultManifest("inner"))
	path, ok, err := FindManifest(file)
	if err != nil || !ok || path != filepath.Join(repo, ManifestName) {
		t.Fatalf("FindManifest = %q, %v, %v", path, ok, err)
	}
}

func TestDecodeConfigRejects(t *testing.T) {
	cases := map[string]string{
		"no package":   "[run]\nmain = \"A.b\"\n",
		"no name":      "[package]\nrequires = \">= 0.1\"\n",
		"bad requires": "[package]\nname = \"x\"\nrequires = \"not a range\"\n",
		"bad entry":    "[package]\nname = \"x\"\n[run]\nmain = \"nodot\"\n",
		"bad format":   "[package]\nname = \"x\"\n[diagnostics]\nformat = \"xml\"\n",
		"unknown key":  "[package]\nname = \"x\"\ncolour = true\n",
	}
	for name, body := range cases {
		path := writeManifest(t, t.TempDir(), body)
		if _, err := DecodeConfig(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestCheckTool(t *testing.T) {
	cfg := Config{Package: PackageConfig{Name: "x", Requires: ">= 0.2.0, < 1.0.0"}}
	if err := cfg.CheckTool("0.3.1"); err != nil {
		t.Fatalf("0.3.1 must satisfy: %v", err)
	}
	if err := cfg.CheckTool("0.2.0-dev"); err != nil {
		t.Fatalf("prerelease of a satisfying version must pass: %v", err)
	}
	err := cfg.CheckTool("0.1.0")
	if !errors.Is(err, ErrToolVersion) {
		t.Fatalf("0.1.0 must be rejected, got %v", err)
	}
	if !strings.Contains(err.Error(), ">= 0.2.0, < 1.0.0") {
		t.Fatalf("error must name the constraint: %v", err)
	}
	if err := (Config{}).CheckTool("9.9.9"); err != nil {
		t.Fatalf("no constraint accepts anything: %v", err)
	}
}

func TestSplitEntry(t *testing.T) {
	c, m, err := SplitEntry(" Main.main ")
	if err != nil || c != "Main" || m != "main" {
		t.Fatalf("SplitEntry: %q %q %v", c, m, err)
	}
	for _, bad := range []string{"", "Main", ".main", "Main."} {
		if _, _, err := SplitEntry(bad); err == nil {
			t.Errorf("SplitEntry(%q) must fail", bad)
		}
	}
}

func TestInitKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	written, err := Init(dir, "")
	if err != nil || len(written) != 2 {
		t.Fatalf("Init: %v %v", written, err)
	}
	cfg, err := DecodeConfig(filepath.Join(dir, ManifestName))
	if err != nil || cfg.Package.Name != filepath.Base(dir) {
		t.Fatalf("written manifest: %+v %v", cfg, err)
	}
	written, err = Init(dir, "other")
	if err != nil || len(written) != 0 {
		t.Fatalf("second Init must write nothing: %v %v", written, err)
	}
}

func TestSourcesDigestIsOrderFree(t *testing.T) {
	a := map[string]Digest{"a.dbc": StringDigest("1"), "b.dbc": StringDigest("2")}
	b := map[string]Digest{"b.dbc": StringDigest("2"), "a.dbc": StringDigest("1")}
	if SourcesDigest(a) != SourcesDigest(b) {
		t.Fatalf("digest depends on map order")
	}
	b["b.dbc"] = StringDigest("3")
	if SourcesDigest(a) == SourcesDigest(b) {
		t.Fatalf("digest ignores content")
	}
}
