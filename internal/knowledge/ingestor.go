package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/drivelane/showroom-ai/pkg/logging"
)

// Ingestor embeds and stores knowledge entries. Ingestion is an operator
// path (seeding, portal upload); unlike retrieval it fails loudly.
type Ingestor struct {
	db       pgxBeginner
	embedder Embedder
	logger   *logging.Logger
}

// NewIngestor creates a Postgres-backed ingestor.
func NewIngestor(db pgxBeginner, embedder Embedder, logger *logging.Logger) *Ingestor {
	if db == nil {
		panic("knowledge: pgx pool required")
	}
	if embedder == nil {
		panic("knowledge: embedder required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ingestor{db: db, embedder: embedder, logger: logger}
}

const insertQuery = `
	INSERT INTO knowledge_entries (title, content, embedding, metadata)
	VALUES ($1, $2, $3, $4)
`

// AddEntries embeds every entry's content and inserts the batch in one
// transaction.
func (i *Ingestor) AddEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	contents := make([]string, len(entries))
	for idx, e := range entries {
		contents[idx] = e.Content
	}

	vectors, err := i.embedder.Embed(ctx, contents)
	if err != nil {
		return fmt.Errorf("knowledge: embed entries: %w", err)
	}
	if len(vectors) != len(entries) {
		return errors.New("knowledge: embedding response size mismatch")
	}

	tx, err := i.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("knowledge: begin ingest tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for idx, e := range entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("knowledge: encode metadata: %w", err)
		}
		if _, err := tx.Exec(ctx, insertQuery, e.Title, e.Content, pgvector.NewVector(vectors[idx]), meta); err != nil {
			return fmt.Errorf("knowledge: insert entry %q: %w", e.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("knowledge: commit ingest tx: %w", err)
	}

	i.logger.Info("knowledge entries ingested", "count", len(entries))
	return nil
}
