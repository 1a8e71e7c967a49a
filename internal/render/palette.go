package render

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ClassPalette assigns a deterministic color to each class label, in the
// order given. Colors are spread around the hue circle at fixed saturation
// and value so neighbouring classes stay distinguishable; the same label
// list always yields the same palette.
func ClassPalette(labels []string) map[string]color.NRGBA {
	palette := make(map[string]color.NRGBA, len(labels)+1)
	n := len(labels)
	for i, label := range labels {
		if _, ok := palette[label]; ok {
			continue
		}
		hue := float64(i) * 360.0 / float64(max(n, 1))
		c := colorful.Hsv(hue, 0.65, 0.85)
		r, g, b := c.RGB255()
		palette[label] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	// Unclassified cells render light grey.
	if _, ok := palette[UnclassifiedLabel]; !ok {
		palette[UnclassifiedLabel] = color.NRGBA{R: 210, G: 210, B: 210, A: 255}
	}
	return palette
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" styling colors.
func ParseHexColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	s := hex
	if s[0] == '#' {
		s = s[1:]
	}

	var alpha uint8 = 255
	switch len(s) {
	case 8:
		var a uint8
		if _, err := fmt.Sscanf(s[6:8], "%02x", &a); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q", hex)
		}
		alpha = a
		s = s[:6]
	case 6:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length in %q", hex)
	}

	c, err := colorful.Hex("#" + s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
