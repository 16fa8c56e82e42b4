package ui

import (
	"os"
	"testing"
)

func TestRender(t *testing.T) {
	SetColor(true)
	defer SetColor(false)

	if got := RenderOK("ok"); got != "\x1b[38;5;71mok\x1b[0m" {
		t.Errorf("RenderOK = %q", got)
	}

	SetColor(false)
	for _, fn := range []func(string) string{RenderAccent, RenderMuted, RenderOK, RenderWarn, RenderError} {
		if got := fn("plain"); got != "plain" {
			t.Errorf("colorless render = %q", got)
		}
	}
}

func TestShouldUseColor(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{name: "NO_COLOR wins", env: map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, want: false},
		{name: "forced", env: map[string]string{"CLICOLOR_FORCE": "1"}, want: true},
		{name: "CLICOLOR off", env: map[string]string{"CLICOLOR": "0"}, want: false},
		{name: "not a terminal", env: map[string]string{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"NO_COLOR", "CLICOLOR_FORCE", "CLICOLOR"} {
				t.Setenv(k, tt.env[k])
			}
			f, err := os.CreateTemp(t.TempDir(), "out")
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			if got := ShouldUseColor(f); got != tt.want {
				t.Errorf("ShouldUseColor = %v, want %v", got, tt.want)
			}
		})
	}
}
