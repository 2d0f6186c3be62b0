package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vagbhata/internal/ingest"
)

var ingestFile string

// ingestCmd populates the vector index from a CSV corpus export.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed the corpus CSV and load it into the vector index",
	Long: `Reads the corpus CSV, generates document embeddings in batches, and
upserts every passage into the local vector index. Re-running replaces
passages in place, so an updated corpus file can be ingested over the old
one.

Example:
  vagbhata ingest --file data/data.csv`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "data/data.csv", "Corpus CSV file")
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp("RETRIEVAL_DOCUMENT")
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	records, err := ingest.LoadCSV(ingestFile)
	if err != nil {
		return err
	}
	logger.Info("corpus loaded", zap.String("file", ingestFile), zap.Int("records", len(records)))

	ing := ingest.NewIngestor(a.store, a.engine, a.cfg.Retrieval.IngestBatchSize, logger)
	n, err := ing.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("ingest finished with failures after %d passages: %w", n, err)
	}

	count, err := a.store.CountPassages()
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d passages (%d total in index).\n", n, count)
	return nil
}
