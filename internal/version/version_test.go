package version

import (
	"runtime/debug"
	"testing"
)

func TestFillFromBuildInfo(t *testing.T) {
	tests := []struct {
		name string
		in   Info
		bi   debug.BuildInfo
		want Info
	}{
		{
			name: "defaults replaced",
			in:   Info{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"},
			bi: debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
				},
			},
			want: Info{Version: "v1.2.0", GitCommit: "0123456789abcdef", BuildDate: "2026-01-02T03:04:05Z"},
		},
		{
			name: "ldflags win",
			in:   Info{Version: "v2.0.0", GitCommit: "feed", BuildDate: "today"},
			bi: debug.BuildInfo{
				Main:     debug.Module{Version: "v1.2.0"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "beef"}},
			},
			want: Info{Version: "v2.0.0", GitCommit: "feed", BuildDate: "today"},
		},
		{
			name: "devel build keeps dev",
			in:   Info{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"},
			bi:   debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			fillFromBuildInfo(&got, &tt.bi)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	i := Info{Version: "v1.0.0", GitCommit: "0123456789abcdef", Platform: "linux/amd64"}
	if got, want := i.String(), "depthvideo v1.0.0 (0123456, linux/amd64)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
