package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors stay readable on light and dark terminals via AdaptiveColor. Faint
// is only applied on dark backgrounds; on light ones it tends to vanish.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      = ac("240", "243")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorBorder     = ac("250", "240")
	colorFocusEdge  = ac("27", "62")
	colorSurfaceFg  = ac("235", "252")
	colorControlBg  = ac("252", "235")
	colorAccent     = ac("27", "62")
	colorToastFg    = ac("255", "255")

	colorDanger  = ac("160", "203")
	colorWarn    = ac("130", "214")
	colorSuccess = ac("28", "35")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// tagStyle colors a tag with its palette entry, when it has one.
func tagStyle(hex string) lipgloss.Style {
	st := lipgloss.NewStyle()
	if hex != "" {
		st = st.Foreground(lipgloss.Color(hex))
	}
	return st
}

// applyColorProfilePreference honours NO_COLOR and otherwise trusts
// TERM/COLORTERM when they claim more than termenv detected.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(os.Getenv("TERM"))
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	switch {
	case profile == termenv.Ascii:
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		profile = termenv.TrueColor
	case strings.Contains(term, "256color") && profile == termenv.ANSI:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference picks the background variant:
// TASKDECK_TUI_THEME=light|dark, then the COLORFGBG heuristic, then lipgloss detection.
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKDECK_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if dark, ok := colorFGBGDark(); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}

// colorFGBGDark reads COLORFGBG ("fg;bg"); palette slots 0-6 are dark.
func colorFGBGDark() (dark bool, ok bool) {
	v := strings.TrimSpace(os.Getenv("COLORFGBG"))
	if v == "" {
		return false, false
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return false, false
	}
	return bg < 7, true
}
