// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// ConsoleTheme is the console's green palette.
type ConsoleTheme struct{}

var _ fyne.Theme = ConsoleTheme{}

var (
	lightPalette = map[fyne.ThemeColorName]color.Color{
		theme.ColorNameBackground:       color.NRGBA{R: 0xf7, G: 0xf7, B: 0xf4, A: 0xff},
		theme.ColorNameButton:           color.NRGBA{R: 0xe3, G: 0xea, B: 0xe4, A: 0xff},
		theme.ColorNamePrimary:          color.NRGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff},
		theme.ColorNameHover:            color.NRGBA{R: 0xdc, G: 0xed, B: 0xdc, A: 0xff},
		theme.ColorNameFocus:            color.NRGBA{R: 0x1b, G: 0x5e, B: 0x20, A: 0xff},
		theme.ColorNameForeground:       color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff},
		theme.ColorNameInputBackground:  color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		theme.ColorNameSelection:        color.NRGBA{R: 0xa5, G: 0xd6, B: 0xa7, A: 0xff},
		theme.ColorNameHeaderBackground: color.NRGBA{R: 0xe8, G: 0xf0, B: 0xe8, A: 0xff},
	}
	darkPalette = map[fyne.ThemeColorName]color.Color{
		theme.ColorNameBackground:       color.NRGBA{R: 0x1c, G: 0x1f, B: 0x1c, A: 0xff},
		theme.ColorNameButton:           color.NRGBA{R: 0x2c, G: 0x33, B: 0x2d, A: 0xff},
		theme.ColorNamePrimary:          color.NRGBA{R: 0x66, G: 0xbb, B: 0x6a, A: 0xff},
		theme.ColorNameHover:            color.NRGBA{R: 0x33, G: 0x3d, B: 0x34, A: 0xff},
		theme.ColorNameFocus:            color.NRGBA{R: 0x81, G: 0xc7, B: 0x84, A: 0xff},
		theme.ColorNameForeground:       color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
		theme.ColorNameInputBackground:  color.NRGBA{R: 0x2a, G: 0x2e, B: 0x2a, A: 0xff},
		theme.ColorNameSelection:        color.NRGBA{R: 0x38, G: 0x8e, B: 0x3c, A: 0xff},
		theme.ColorNameHeaderBackground: color.NRGBA{R: 0x26, G: 0x2b, B: 0x26, A: 0xff},
	}
)

func (ConsoleTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	palette := darkPalette
	if variant == theme.VariantLight {
		palette = lightPalette
	}
	if c, ok := palette[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (ConsoleTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (ConsoleTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Size tightens the padding so more rows fit in a table.
func (ConsoleTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 4
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return theme.DefaultTheme().Size(name)
}
