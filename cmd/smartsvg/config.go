// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/smartsvg/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage smartsvg configuration",
	Long:  "View and modify smartsvg configuration values",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(config.GetString(args[0]))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := config.Set(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Set %s = %s\n", args[0], args[1])
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, line := range flatten("", config.GetAll()) {
			fmt.Println(line)
		}
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

// initConfig initializes the configuration system
func initConfig() error {
	configPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	return config.InitConfig(configPath)
}

// flatten renders nested settings as sorted "a.b: value" lines
func flatten(prefix string, settings map[string]any) []string {
	var lines []string
	for key, value := range settings {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			lines = append(lines, flatten(key, nested)...)
			continue
		}
		if key == "service.access_token" && value != "" {
			value = "********"
		}
		lines = append(lines, fmt.Sprintf("%s: %v", key, value))
	}
	sort.Strings(lines)
	return lines
}
