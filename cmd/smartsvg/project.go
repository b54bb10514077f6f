// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"github.com/thatcatcamp/smartsvg/internal/projects"
	"github.com/thatcatcamp/smartsvg/internal/themes"
)

// projectFlags are the settings shared by project create and convert
type projectFlags struct {
	kind        string
	darkTheme   string
	mobileTheme string
	breakpoint  string
	alt         string
	description string
	decorative  bool
	favicon     bool
}

func (f *projectFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.kind, "kind", "logo", "Project kind: logo, icon, favicon or illustration")
	flags.StringVar(&f.darkTheme, "dark-theme", string(themes.InvertColor), "Dark theme: invertColor, invertLuminosity or none")
	flags.StringVar(&f.mobileTheme, "mobile-dark-theme", "", "Dark theme of the mobile rendition (defaults to --dark-theme)")
	flags.StringVar(&f.breakpoint, "breakpoint", "", "Width in pixels where the mobile rendition takes over")
	flags.StringVar(&f.alt, "alt", "", "Alternative text")
	flags.StringVar(&f.description, "description", "", "Long description (illustrations)")
	flags.BoolVar(&f.decorative, "decorative", false, "Hide the graphic from assistive technology")
	flags.BoolVar(&f.favicon, "favicon", false, "Mark a favicon project as the site favicon")
}

// build turns the flags into project settings. responsive is forced on
// when a breakpoint is set.
func (f *projectFlags) build() (project.Project, error) {
	mode := themes.Mode(f.darkTheme)
	mobile := mode
	if f.mobileTheme != "" {
		mobile = themes.Mode(f.mobileTheme)
	}
	responsive := f.breakpoint != ""

	var p project.Project
	switch project.Kind(strings.ToLower(f.kind)) {
	case project.KindLogo:
		p = project.Logo{
			DarkTheme:       mode,
			DarkThemeMobile: mobile,
			IsResponsive:    responsive,
			HasAltText:      f.alt != "",
			Alt:             f.alt,
			Breakpoint:      f.breakpoint,
		}
	case project.KindIcon:
		p = project.Icon{DarkTheme: mode, IsDecorative: f.decorative, Alt: f.alt}
	case project.KindFavicon:
		p = project.Favicon{DarkTheme: mode, Favicon: f.favicon}
	case project.KindIllustration:
		p = project.Illustration{
			IsResponsive:    responsive,
			DarkTheme:       mode,
			DarkThemeMobile: mobile,
			IsDecorative:    f.decorative,
			Alt:             f.alt,
			Description:     f.description,
			Breakpoint:      f.breakpoint,
		}
	default:
		return nil, fmt.Errorf("unknown project kind %q", f.kind)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  "Create, list, and delete smart SVG projects",
}

var createFlags projectFlags

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		p, err := createFlags.build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		database, err := openDB()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		record, err := projects.CreateProject(database, args[0], p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating project: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Project created: %s (ID: %s)\n", record.Name, record.ID)
		fmt.Printf("Features: %s\n", strings.Join(p.Features(), ", "))
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		database, err := openDB()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		records, err := projects.ListProjects(database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing projects: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tKIND\tPHASE\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Name, r.Kind, r.Phase, r.CreatedAt.Format("2006-01-02"))
		}
		w.Flush()
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		database, err := openDB()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := projects.DeleteProject(database, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting project: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Project deleted: %s\n", args[0])
	},
}

func init() {
	createFlags.register(projectCreateCmd.Flags())

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
