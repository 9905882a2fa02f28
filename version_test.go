package atxpkg

import "testing"

func TestSplitNameVersion(t *testing.T) {
	for _, tt := range []struct {
		spec       string
		name, vers string
	}{
		{"atx300-base-6.3-1.atxpkg.zip", "atx300-base", "6.3-1"},
		{"atx300-base.dev-0-1.atxpkg.zip", "atx300-base.dev", "0-1"},
		{"atxpkg-1.5-3.atxpkg.zip", "atxpkg", "1.5-3"},
		{"test-1.0-1.atxpkg.zip", "test", "1.0-1"},
		{"test-2.0-1.atxpkg.zip", "test", "2.0-1"},
		{"neco.dev-20240722223042-1.atxpkg.zip", "neco.dev", "20240722223042-1"},
		{"atxpkg", "atxpkg", ""},
		{"libfoo-2-stable-1.0-1", "libfoo-2-stable", "1.0-1"},
	} {
		t.Run(tt.spec, func(t *testing.T) {
			name, vers := SplitNameVersion(tt.spec)
			if name != tt.name || vers != tt.vers {
				t.Fatalf("SplitNameVersion(%q) = (%q, %q), want (%q, %q)", tt.spec, name, vers, tt.name, tt.vers)
			}
		})
	}
}

func TestCompareVersions(t *testing.T) {
	for _, tt := range []struct {
		v1, v2 string
		want   int
	}{
		{"1.10-1", "1.2-1", 1},
		{"1.2-1", "1.10-1", -1},
		{"20240722223043-1", "20240722223042-1", 1},
		{"6.3-1", "6.3-1", 0},
		{"1.0-1", "2.0-1", -1},
	} {
		t.Run(tt.v1+"_"+tt.v2, func(t *testing.T) {
			got := CompareVersions(tt.v1, tt.v2)
			if (got < 0) != (tt.want < 0) || (got > 0) != (tt.want > 0) || (got == 0) != (tt.want == 0) {
				t.Fatalf("CompareVersions(%q, %q) = %d, want sign of %d", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}
