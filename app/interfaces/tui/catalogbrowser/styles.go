package catalogbrowser

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the browser. The cycle order is light, dark, system.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
	ThemeSystem
)

func (t Theme) String() string {
	switch t {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "system"
	}
}

func (t Theme) Next() Theme {
	switch t {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeSystem
	default:
		return ThemeLight
	}
}

type palette struct {
	title       lipgloss.Style
	tab         lipgloss.Style
	selectedTab lipgloss.Style
	item        lipgloss.Style
	muted       lipgloss.Style
	err         lipgloss.Style
}

// color picks the light or dark variant; the system theme lets the terminal decide.
func (t Theme) color(light, dark string) lipgloss.TerminalColor {
	switch t {
	case ThemeLight:
		return lipgloss.Color(light)
	case ThemeDark:
		return lipgloss.Color(dark)
	default:
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}
}

func (t Theme) palette() palette {
	accent := t.color("4", "12")
	return palette{
		title: lipgloss.NewStyle().Bold(true).Foreground(accent),
		tab: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(t.color("240", "245")),
		selectedTab: lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(t.color("255", "0")).
			Background(accent),
		item:  lipgloss.NewStyle().Foreground(t.color("0", "255")),
		muted: lipgloss.NewStyle().Foreground(t.color("240", "245")),
		err:   lipgloss.NewStyle().Foreground(t.color("1", "9")),
	}
}
