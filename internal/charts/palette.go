package charts

import (
	"fmt"
	"image/color"
)

// Palette defines the page and chart color scheme.
type Palette struct {
	// Background is the main page background color
	Background string
	// Card is the background for cards/panels
	Card string
	// CardBorder is the border/highlight for cards
	CardBorder string
	// Text is the primary text color
	Text string
	// TextMuted is the secondary/muted text color
	TextMuted string
	// Accent is the primary accent color (links, highlights)
	Accent string
	// AccentAlt is a secondary accent (hottest day, warnings)
	AccentAlt string
}

// DefaultPalette is the dark dashboard theme.
var DefaultPalette = Palette{
	Background: "#0f0f1a",
	Card:       "#1a1a2e",
	CardBorder: "#2a2a4e",
	Text:       "#eeeeee",
	TextMuted:  "#8a8aa0",
	Accent:     "#4fc3f7",
	AccentAlt:  "#ff7043",
}

// Series colors, one per chart.
var (
	scatterColor = color.NRGBA{R: 128, G: 0, B: 128, A: 153} // purple, 60% opacity
	boxColor     = color.NRGBA{R: 79, G: 195, B: 247, A: 255}
	trendColor   = color.NRGBA{R: 255, G: 165, B: 0, A: 255}   // orange
	barColor     = color.NRGBA{R: 135, G: 206, B: 235, A: 255} // skyblue
	histFill     = color.NRGBA{R: 0, G: 0, B: 255, A: 110}
	kdeColor     = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	nanCellColor = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
)

// RGBA parses a #rrggbb hex color.
func RGBA(hex string) (color.RGBA, error) {
	var c color.RGBA
	if len(hex) != 7 || hex[0] != '#' {
		return c, fmt.Errorf("parse color %q: want #rrggbb", hex)
	}
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("parse color %q: %w", hex, err)
	}
	c.A = 255
	return c, nil
}
