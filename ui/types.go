// Package ui draws the heads-up display and turns keyboard and mouse input
// into game events.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	SuccessColor   rl.Color
	FailureColor   rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	ButtonWidth    int32
	ButtonHeight   int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		SuccessColor:   rl.Color{R: 100, G: 200, B: 100, A: 255},
		FailureColor:   rl.Color{R: 200, G: 100, B: 100, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     60,
		ButtonWidth:    90,
		ButtonHeight:   28,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
