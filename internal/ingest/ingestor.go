// Package ingest populates the vector index from a CSV corpus export. Each
// row becomes one passage: the content column is embedded, the remaining
// columns ride along as metadata for formatting and guardrail checks.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vagbhata/internal/embedding"
	"vagbhata/internal/retrieval"
)

// DefaultBatchSize is the embedding batch size for corpus population.
const DefaultBatchSize = 50

// maxConcurrentBatches bounds in-flight embedding requests.
const maxConcurrentBatches = 4

// metadataColumns are carried verbatim from the CSV into passage metadata.
var metadataColumns = []string{
	retrieval.MetaSutraName,
	retrieval.MetaPrimaryCategory,
	retrieval.MetaSafetyLevel,
	retrieval.MetaTargetDosha,
	retrieval.MetaAdviceType,
}

// Record is one corpus row ready for embedding and upsert.
type Record struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Sink is the slice of the store the ingestor writes to.
type Sink interface {
	UpsertPassage(id, content string, vec []float32, metadata map[string]string) error
}

// Ingestor embeds corpus records in batches and upserts them into the index.
type Ingestor struct {
	sink      Sink
	engine    embedding.Engine
	batchSize int
	log       *zap.Logger
}

// NewIngestor creates an ingestor. batchSize <= 0 falls back to
// DefaultBatchSize.
func NewIngestor(sink Sink, engine embedding.Engine, batchSize int, logger *zap.Logger) *Ingestor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		sink:      sink,
		engine:    engine,
		batchSize: batchSize,
		log:       logger.Named("ingest"),
	}
}

// LoadCSV reads a corpus export. The header row must contain a content
// column (any header beginning with "content") and may contain the known
// metadata columns in any order. Row N gets passage ID strconv.Itoa(N).
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Real exports can be ragged; short rows degrade per-row below instead
	// of failing the whole file.
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("corpus file %s has no data rows", path)
	}

	header := rows[0]
	contentIdx := -1
	metaIdx := make(map[string]int)
	for i, col := range header {
		name := strings.TrimSpace(col)
		if contentIdx == -1 && strings.HasPrefix(strings.ToLower(name), "content") {
			contentIdx = i
			continue
		}
		for _, want := range metadataColumns {
			if name == want {
				metaIdx[want] = i
			}
		}
	}
	if contentIdx == -1 {
		return nil, fmt.Errorf("corpus file %s has no content column", path)
	}

	records := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if contentIdx >= len(row) {
			continue
		}
		content := strings.TrimSpace(row[contentIdx])
		if content == "" {
			continue
		}
		meta := make(map[string]string, len(metaIdx))
		for key, idx := range metaIdx {
			if idx < len(row) {
				meta[key] = strings.TrimSpace(row[idx])
			}
		}
		records = append(records, Record{
			ID:       strconv.Itoa(n),
			Content:  content,
			Metadata: meta,
		})
	}
	return records, nil
}

// Run embeds the records in batches with bounded concurrency and upserts
// each batch into the sink. A failed batch is logged and skipped so one bad
// request never aborts a long ingest; Run reports how many passages landed
// and returns an error only when at least one batch failed.
func (in *Ingestor) Run(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var mu sync.Mutex
	upserted := 0
	failedBatches := 0

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentBatches)

	totalBatches := 0
	for start := 0; start < len(records); start += in.batchSize {
		end := start + in.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		totalBatches++

		eg.Go(func() error {
			n, err := in.ingestBatch(egCtx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failedBatches++
				in.log.Error("batch ingest failed",
					zap.String("first_id", batch[0].ID),
					zap.Int("size", len(batch)),
					zap.Error(err))
				return nil
			}
			upserted += n
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return upserted, err
	}
	if failedBatches > 0 {
		return upserted, fmt.Errorf("%d of %d batches failed", failedBatches, totalBatches)
	}

	in.log.Info("corpus ingest complete",
		zap.Int("passages", upserted),
		zap.Int("batches", totalBatches))
	return upserted, nil
}

func (in *Ingestor) ingestBatch(ctx context.Context, batch []Record) (int, error) {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.Content
	}

	vecs, err := in.engine.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vecs) != len(batch) {
		return 0, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(vecs), len(batch))
	}

	n := 0
	for i, rec := range batch {
		if err := in.sink.UpsertPassage(rec.ID, rec.Content, vecs[i], rec.Metadata); err != nil {
			return n, fmt.Errorf("upsert of passage %s failed: %w", rec.ID, err)
		}
		n++
	}
	return n, nil
}
