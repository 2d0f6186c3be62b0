package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vagbhata/internal/chatbot"
	"vagbhata/internal/config"
	"vagbhata/internal/store"
)

// threadsCmd lists stored threads for the current identity. It only touches
// the local database, so no API key is needed.
var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List conversation threads for the current identity",
	RunE:  runThreads,
}

func runThreads(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Memory.DatabasePath = dbPath
	}

	st, err := store.NewLocalStore(cfg.Memory.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	ids, err := st.ListThreads()
	if err != nil {
		return fmt.Errorf("failed to list threads: %w", err)
	}

	n := 0
	for _, id := range ids {
		if chatbot.OwnerOf(id) != identity {
			continue
		}
		n++
		msgs, err := st.GetThread(id)
		if err != nil {
			return fmt.Errorf("failed to load thread %s: %w", id, err)
		}
		fmt.Printf("%3d. %-24s %s\n", n, chatbot.ThreadTitle(msgs, chatbot.DefaultThreadNameLength), id)
	}
	if n == 0 {
		fmt.Println("no threads yet")
	}
	return nil
}
