package build_test

import (
	"testing"

	"github.com/rohmanhakim/legaldata/internal/build"
)

func setBuildInfo(t *testing.T, version, commit, builtAt string) {
	t.Helper()
	prevVersion, prevCommit, prevTime := build.Version, build.Commit, build.BuildTime
	build.Version, build.Commit, build.BuildTime = version, commit, builtAt
	t.Cleanup(func() {
		build.Version, build.Commit, build.BuildTime = prevVersion, prevCommit, prevTime
	})
}

func TestFullVersion(t *testing.T) {
	tests := []struct {
		version string
		commit  string
		want    string
	}{
		{"dev", "none", "dev+none"},
		{"0.3.1", "9f2c1ab", "0.3.1+9f2c1ab"},
		{"1.0.0-rc.1", "", "1.0.0-rc.1+"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			setBuildInfo(t, tt.version, tt.commit, "unknown")

			if got := build.FullVersion(); got != tt.want {
				t.Errorf("FullVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	setBuildInfo(t, "1.2.0", "abc123", "2026-10-01T00:00:00Z")

	want := "legaldata 1.2.0+abc123 (built 2026-10-01T00:00:00Z)"
	if got := build.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
