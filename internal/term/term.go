// Package term resolves the color mode and owns the lipgloss styles used
// for log level tags and the banner.
//
// Styles are package-level because both logging and display render with
// them. [Configure] sets them once during startup; when colors are disabled
// [Paint] returns its input unchanged.
package term

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/backmassage/xcassetclean/internal/config"
)

// Style names accepted by [Paint].
const (
	StyleInfo    = "info"
	StyleSuccess = "success"
	StyleWarn    = "warn"
	StyleError   = "error"
	StyleDebug   = "debug"
	StyleBanner  = "banner"
)

var (
	enabled bool
	styles  = map[string]lipgloss.Style{}
)

// Configure resolves mode against out and builds the styles. Call once
// during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode, out io.Writer) {
	enabled = resolve(mode, out)

	r := lipgloss.NewRenderer(out)
	if enabled {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	bold := r.NewStyle().Bold(true)
	styles = map[string]lipgloss.Style{
		StyleInfo:    bold.Foreground(lipgloss.Color("12")),
		StyleSuccess: bold.Foreground(lipgloss.Color("10")),
		StyleWarn:    bold.Foreground(lipgloss.Color("11")),
		StyleError:   bold.Foreground(lipgloss.Color("9")),
		StyleDebug:   bold.Foreground(lipgloss.Color("14")),
		StyleBanner:  bold.Foreground(lipgloss.Color("13")),
	}
}

// Paint renders s with the named style, or returns s as-is when colors are
// off or the style is unknown.
func Paint(style, s string) string {
	if !enabled {
		return s
	}
	st, ok := styles[style]
	if !ok {
		return s
	}
	return st.Render(s)
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		f, _ := out.(*os.File)
		return IsTerminal(f) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
