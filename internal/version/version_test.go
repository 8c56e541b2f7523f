package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestCurrentTrimsAndDefaults(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "  "
	GitCommit = " abc123 \n"
	info := Current()
	if info.Version != "dev" {
		t.Errorf("Version = %q, want dev", info.Version)
	}
	if info.GitCommit != "abc123" {
		t.Errorf("GitCommit = %q", info.GitCommit)
	}
}

func TestColored(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()
	color.NoColor = true

	cases := map[string]string{
		"0.1.0-dev":   "0.1.0-dev",
		"1.2.3":       "1.2.3",
		"1.0.0-rc.1":  "1.0.0-rc.1",
		"dev":         "dev",
		"2024.01.15b": "2024.01.15b",
	}
	for in, want := range cases {
		if got := Colored(in); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}

	color.NoColor = false
	if got := Colored("1.2.3"); got == "1.2.3" {
		t.Errorf("expected escape codes with color enabled")
	}
	if got := Colored("dev"); got != "dev" {
		t.Errorf("non-semver version was painted: %q", got)
	}
}

func BenchmarkVersionAccess(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Current()
	}
}
