// Package ui styles CLI output with ANSI 256 colors.
package ui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI256 color codes.
const (
	colorAccent = 74
	colorMuted  = 245
	colorOK     = 71
	colorWarn   = 179
	colorError  = 167
)

var noColor = !ShouldUseColor(os.Stdout)

func render(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// RenderAccent highlights identifiers such as org ids and queue names.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted dims secondary detail.
func RenderMuted(s string) string { return render(colorMuted, s) }

func RenderOK(s string) string { return render(colorOK, s) }

func RenderWarn(s string) string { return render(colorWarn, s) }

func RenderError(s string) string { return render(colorError, s) }

// SetColor turns styling on or off globally.
func SetColor(enabled bool) {
	noColor = !enabled
}

// ShouldUseColor reports whether f should receive ANSI colors. It honors
// NO_COLOR, CLICOLOR_FORCE and CLICOLOR before falling back to TTY detection.
func ShouldUseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}
