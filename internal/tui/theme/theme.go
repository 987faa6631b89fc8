// Package theme defines the colour palettes of the fintrack dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Selected row
	SurfaceBright lipgloss.Color // Selected settings field
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // Modal and loading card borders
	TextDim       lipgloss.Color // Hints, disabled
	TextMuted     lipgloss.Color // Labels, metadata
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color // Active tab, links
	AccentBright  lipgloss.Color
	Green         lipgloss.Color // Paid, profit
	Orange        lipgloss.Color // Overdue, nearing due
	Red           lipgloss.Color // Repeatedly overdue, loss
	Blue          lipgloss.Color
	Yellow        lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Green:         lipgloss.Color("#879A39"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	Yellow:        lipgloss.Color("#D0A215"),
	Cyan:          lipgloss.Color("#24837B"),
}

// FlexokiLight is the paper-coloured variant of FlexokiDark.
var FlexokiLight = Theme{
	Name:          "flexoki-light",
	Background:    lipgloss.Color("#FFFCF0"),
	Surface:       lipgloss.Color("#F2F0E5"),
	SurfaceHover:  lipgloss.Color("#E6E4D9"),
	SurfaceBright: lipgloss.Color("#DAD8CE"),
	Border:        lipgloss.Color("#CECDC3"),
	BorderAccent:  lipgloss.Color("#24837B"),
	TextDim:       lipgloss.Color("#B7B5AC"),
	TextMuted:     lipgloss.Color("#6F6E69"),
	TextPrimary:   lipgloss.Color("#100F0F"),
	Accent:        lipgloss.Color("#24837B"),
	AccentBright:  lipgloss.Color("#1C6C66"),
	Green:         lipgloss.Color("#66800B"),
	Orange:        lipgloss.Color("#BC5215"),
	Red:           lipgloss.Color("#AF3029"),
	Blue:          lipgloss.Color("#205EA6"),
	Yellow:        lipgloss.Color("#AD8301"),
	Cyan:          lipgloss.Color("#24837B"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Green:         lipgloss.Color("2"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	Yellow:        lipgloss.Color("3"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{FlexokiDark, FlexokiLight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// Known reports whether name is a defined theme.
func Known(name string) bool {
	for _, t := range All {
		if t.Name == name {
			return true
		}
	}
	return false
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Sign returns green for a gain, red for a loss and muted when flat.
func (t Theme) Sign(sign int) lipgloss.Color {
	switch {
	case sign > 0:
		return t.Green
	case sign < 0:
		return t.Red
	}
	return t.TextMuted
}

// Late is the colour of an overdue row.
func (t Theme) Late(repeated bool) lipgloss.Color {
	if repeated {
		return t.Red
	}
	return t.Orange
}
