package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	identity   string
	dbPath     string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vagbhata",
	Short: "Vagbhata - Ayurvedic wisdom chatbot grounded in classical sources",
	Long: `Vagbhata is a retrieval-augmented chatbot for classical Ayurvedic
knowledge, drawing on the texts attributed to Maharishi Vagbhata.

Every answer is grounded in passages retrieved from the embedded corpus;
safety-critical advice carries an explicit consult-a-practitioner notice.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			// Keep the terminal clean for conversation output.
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Config file path")
	rootCmd.PersistentFlags().StringVarP(&identity, "identity", "i", "", "User identity for thread ownership (default: anonymous)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(configCmd)
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.vagbhata/config.yaml"
	}
	return "config.yaml"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
