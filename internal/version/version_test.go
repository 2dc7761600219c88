package version

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	info := Info{
		Version:     "1.2.0",
		BuildTime:   "2024-05-01T10:00:00Z",
		GoVersion:   "go1.24.6",
		VCSRevision: "0123456789abcdef",
		VCSModified: true,
	}

	got := info.String()
	for _, want := range []string{"Version: 1.2.0", "Built: 2024-05-01T10:00:00Z", "Go: go1.24.6", "Commit: 01234567 (modified)"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
	if info.Check() == "" {
		t.Error("Check() should warn about a modified tree")
	}
}

func TestCheckDevBuild(t *testing.T) {
	if (Info{Version: "dev"}).Check() == "" {
		t.Error("Check() should warn about a build without VCS information")
	}
	if got := (Info{Version: "1.0.0", VCSRevision: "abc"}).Check(); got != "" {
		t.Errorf("Check() = %q, want no warning", got)
	}
	if got := (Info{Version: "dev"}).String(); strings.Contains(got, "Built:") || strings.Contains(got, "Commit:") {
		t.Errorf("String() = %q, want only version and Go", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "fintrack/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
