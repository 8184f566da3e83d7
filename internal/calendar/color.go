package calendar

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Palette is the default set of event colors.
var Palette = []string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#FFA07A",
	"#98D8C8",
}

// PickColor returns a random entry of palette, falling back to Palette.
func PickColor(r *rand.Rand, palette []string) string {
	if len(palette) == 0 {
		palette = Palette
	}
	if r == nil {
		return palette[rand.Intn(len(palette))]
	}
	return palette[r.Intn(len(palette))]
}

// DarkenColor scales each channel of a "#RRGGBB" color down by percent.
func DarkenColor(hex string, percent float64) (string, error) {
	return shiftColor(hex, func(v int) int {
		return clampChannel(int(float64(v) * (1 - percent/100)))
	})
}

func shiftColor(hex string, fn func(int) int) (string, error) {
	raw := strings.TrimPrefix(hex, "#")
	if len(raw) != 6 {
		return "", fmt.Errorf("invalid hex color %q", hex)
	}
	channels := [3]int{}
	for i := range channels {
		v, err := strconv.ParseUint(raw[i*2:i*2+2], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		channels[i] = fn(int(v))
	}
	return fmt.Sprintf("#%02x%02x%02x", channels[0], channels[1], channels[2]), nil
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
