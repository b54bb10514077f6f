// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smartsvg",
	Short: "smartsvg - light and dark theme SVGs from a single upload",
	Long: `smartsvg derives dark theme renditions of uploaded SVG graphics,
lets you edit and lock their colors per device, and composes the result
into a single "smart" SVG that follows the viewer's color scheme.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
