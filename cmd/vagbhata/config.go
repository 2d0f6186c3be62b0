package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vagbhata/internal/config"
)

var configForce bool

// configCmd manages the on-disk configuration file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Writes the default configuration to the config path so the editable
knobs (model, database path, retrieval depth) are on disk. Refuses to
overwrite an existing file unless --force is given. The API key is still
read from GOOGLE_API_KEY / GEMINI_API_KEY.`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf("Wrote default config to %s\n", configPath)
	return nil
}
