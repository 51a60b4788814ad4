package cmd

import "testing"

func TestResolveFlag(t *testing.T) {
	tests := []struct {
		name        string
		flagValue   string
		configValue string
		want        string
	}{
		{name: "flag wins", flagValue: "./custom.db", configValue: "timesift.db", want: "./custom.db"},
		{name: "config fallback", flagValue: "", configValue: "timesift.db", want: "timesift.db"},
		{name: "both empty", flagValue: "", configValue: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveFlag(tt.flagValue, tt.configValue); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
