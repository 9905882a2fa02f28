package install

import "testing"

func TestParseSpec(t *testing.T) {
	for _, tt := range []struct {
		in          string
		name, vers string
	}{
		{"test", "test", ""},
		{"test-1.0-1", "test", "1.0-1"},
	} {
		got := ParseSpec(tt.in)
		if got.Name != tt.name || got.Version != tt.vers {
			t.Errorf("ParseSpec(%q) = %+v, want {%q %q}", tt.in, got, tt.name, tt.vers)
		}
	}
}

func TestParseUpdateSpec(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want UpdateSpec
	}{
		{"test", UpdateSpec{"test", "", "test", ""}},
		{"test-1.0-1", UpdateSpec{"test", "", "test", "1.0-1"}},
		{"old-1.0-1..new-2.0-1", UpdateSpec{"old", "1.0-1", "new", "2.0-1"}},
		{"old..new", UpdateSpec{"old", "", "new", ""}},
	} {
		got := ParseUpdateSpec(tt.in)
		if got != tt.want {
			t.Errorf("ParseUpdateSpec(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
