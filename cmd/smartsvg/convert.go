// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/smartsvg/internal/config"
	"github.com/thatcatcamp/smartsvg/internal/coordinator"
	"github.com/thatcatcamp/smartsvg/internal/logging"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"github.com/thatcatcamp/smartsvg/internal/uploads"
)

var (
	convertFlags   projectFlags
	convertMobile  string
	convertLocks   []string
	convertEdits   []string
	convertOut     string
	convertSmart   bool
	convertOffline bool
)

// parseEdit splits an old=new color edit
func parseEdit(s string) (string, string, error) {
	oldColor, newColor, ok := strings.Cut(s, "=")
	oldColor = strings.TrimSpace(oldColor)
	newColor = strings.TrimSpace(newColor)
	if !ok || oldColor == "" || newColor == "" {
		return "", "", fmt.Errorf("invalid edit %q, expected old=new", s)
	}
	return oldColor, newColor, nil
}

// outputBase is the file name of path without its extension
func outputBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var convertCmd = &cobra.Command{
	Use:   "convert <light.svg>",
	Short: "Derive the dark renditions of an SVG",
	Long: `Upload a light SVG (and optionally its mobile rendition), apply color
edits and locks to the desktop rendition, carry them over to mobile and
write the dark renditions. With --smart the final smart SVG is composed
as well.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := setup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if convertMobile != "" && convertFlags.breakpoint == "" {
			convertFlags.breakpoint = "768"
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runConvert(ctx, logger, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runConvert(ctx context.Context, logger zerolog.Logger, lightPath string) error {
	p, err := convertFlags.build()
	if err != nil {
		return err
	}

	maxBytes := config.GetInt64("uploads.max_bytes")
	src := coordinator.Sources{}
	if src.Desktop, err = uploads.ReadSVGFile(lightPath, maxBytes); err != nil {
		return fmt.Errorf("%s: %w", lightPath, err)
	}
	if convertMobile != "" {
		if src.Mobile, err = uploads.ReadSVGFile(convertMobile, maxBytes); err != nil {
			return fmt.Errorf("%s: %w", convertMobile, err)
		}
	}

	c := coordinator.New(p, coordinator.Options{
		Service: newService(logger, nil, convertOffline),
		Logger:  logging.Component(logger, "coordinator"),
	})
	if err := c.Load(ctx, src); err != nil {
		return err
	}

	for _, e := range convertEdits {
		oldColor, newColor, err := parseEdit(e)
		if err != nil {
			return err
		}
		if err := c.EditColor(ctx, project.Desktop, oldColor, newColor); err != nil {
			return err
		}
	}
	for _, color := range convertLocks {
		if err := c.ToggleLock(ctx, project.Desktop, color); err != nil {
			return err
		}
	}

	if src.Mobile != "" {
		desktop := c.Snapshot().Devices[project.Desktop]
		if _, err := c.ApplyChangesToMobile(desktop.LoadedDarkColors, desktop.DarkColors); err != nil {
			return err
		}
	}

	snap := c.Snapshot()
	if convertOut == "" && !convertSmart {
		fmt.Println(snap.Devices[project.Desktop].Dark)
		return nil
	}

	dir := convertOut
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	base := outputBase(lightPath)

	write := func(name, text string) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	if err := write(base+"-dark.svg", snap.Devices[project.Desktop].Dark); err != nil {
		return err
	}
	if mobile, ok := snap.Devices[project.Mobile]; ok {
		if err := write(base+"-mobile-dark.svg", mobile.Dark); err != nil {
			return err
		}
	}

	if convertSmart {
		smart, err := c.MakeSmart(ctx)
		if err != nil {
			return err
		}
		if err := write(base+"-smart.svg", smart); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	convertFlags.register(convertCmd.Flags())
	convertCmd.Flags().StringVar(&convertMobile, "mobile", "", "Light SVG of the mobile rendition")
	convertCmd.Flags().StringArrayVar(&convertLocks, "lock", nil, "Keep a color unchanged in dark mode (repeatable)")
	convertCmd.Flags().StringArrayVar(&convertEdits, "edit", nil, "Replace a dark color, as old=new (repeatable)")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "Output directory (prints the desktop dark SVG when empty)")
	convertCmd.Flags().BoolVar(&convertSmart, "smart", false, "Compose the smart SVG")
	convertCmd.Flags().BoolVar(&convertOffline, "offline", false, "Use the local manipulation engine")

	rootCmd.AddCommand(convertCmd)
}
