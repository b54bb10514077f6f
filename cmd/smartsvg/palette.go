// SPDX-License-Identifier: MIT
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/smartsvg/internal/config"
	"github.com/thatcatcamp/smartsvg/internal/palette"
	"github.com/thatcatcamp/smartsvg/internal/themes"
	"github.com/thatcatcamp/smartsvg/internal/uploads"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// swatch renders a color block followed by its token. Tokens that are not
// colors, like url(#a), are shown without a block.
func swatch(token string) string {
	c, ok := themes.Parse(token)
	if !ok {
		return "   " + token
	}
	block := lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("  ")
	return block + " " + token
}

// renderPalette lists one line per entry, gradients with their stops
func renderPalette(p palette.Palette) string {
	var b strings.Builder
	for i, entry := range p {
		if !entry.IsGradient() {
			fmt.Fprintf(&b, "%3d  %s  %s\n", i+1, swatch(entry.Color.Value), mutedStyle.Render(entry.Color.Name))
			continue
		}
		fmt.Fprintf(&b, "%3d  %s\n", i+1, mutedStyle.Render("gradient"))
		for _, stop := range entry.Stops {
			fmt.Fprintf(&b, "       %s\n", swatch(stop.Value))
		}
	}
	return b.String()
}

func readPalette(path string) (palette.Palette, error) {
	text, err := uploads.ReadSVGFile(path, config.GetInt64("uploads.max_bytes"))
	if err != nil {
		return nil, err
	}
	return palette.Extract(text)
}

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Inspect SVG color palettes",
}

var paletteExtractCmd = &cobra.Command{
	Use:   "extract <file.svg>",
	Short: "List the colors of an SVG",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		p, err := readPalette(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, _ := json.MarshalIndent(p, "", "  ")
			fmt.Println(string(out))
			return
		}

		fmt.Println(headerStyle.Render(args[0]))
		fmt.Print(renderPalette(p))

		for _, w := range themes.CheckContrast(p, themes.DarkBackground) {
			fmt.Printf("warning: %s has contrast %.2f against %s (minimum %.1f)\n",
				w.Color, w.Ratio, themes.DarkBackground, themes.MinContrastRatio)
		}
	},
}

var paletteMatchCmd = &cobra.Command{
	Use:   "match <desktop.svg> <mobile.svg>",
	Short: "List the colors two SVGs share",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		a, err := readPalette(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		b, err := readPalette(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		matched := palette.Intersect(a, b)
		if len(matched) == 0 {
			fmt.Println("No shared colors")
			return
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("%d shared colors", len(matched))))
		for _, c := range matched {
			fmt.Println("  " + swatch(c))
		}
	},
}

func init() {
	paletteExtractCmd.Flags().Bool("json", false, "Print the palette in the service wire format")
	paletteCmd.AddCommand(paletteExtractCmd)
	paletteCmd.AddCommand(paletteMatchCmd)
	rootCmd.AddCommand(paletteCmd)
}
