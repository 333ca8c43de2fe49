package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withValues(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func withoutColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestVersion_DefaultIsSemver(t *testing.T) {
	withoutColor(t)
	if got := Colored(); got != Version {
		t.Fatalf("Colored() = %q, want %q", got, Version)
	}
}

func TestVersion_Long(t *testing.T) {
	withoutColor(t)
	cases := []struct {
		commit, date string
		want         string
	}{
		{"", "", "dbc 1.2.3"},
		{"abc123", "", "dbc 1.2.3 (abc123)"},
		{"abc123", "2024-01-15", "dbc 1.2.3 (abc123, 2024-01-15)"},
		{"", "2024-01-15", "dbc 1.2.3 (2024-01-15)"},
	}
	for _, tc := range cases {
		withValues(t, "1.2.3", tc.commit, tc.date)
		if got := Long(); got != tc.want {
			t.Errorf("Long() = %q, want %q", got, tc.want)
		}
	}
}

func TestVersion_NonSemverPassesThrough(t *testing.T) {
	withValues(t, "nightly", "", "")
	if got := Colored(); got != "nightly" {
		t.Fatalf("Colored() = %q", got)
	}
}

func TestVersion_ColoredKeepsPrerelease(t *testing.T) {
	withoutColor(t)
	withValues(t, "0.4.1-rc.2", "", "")
	if got := Colored(); !strings.HasSuffix(got, "-rc.2") || !strings.HasPrefix(got, "0.4.1") {
		t.Fatalf("Colored() = %q", got)
	}
}
