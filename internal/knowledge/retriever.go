package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/drivelane/showroom-ai/pkg/logging"
)

// pgxBeginner is the slice of pgxpool.Pool the retriever needs. Probes must
// be set on the same connection that runs the search, so each retrieval runs
// inside one transaction.
type pgxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgvectorRetriever searches the knowledge_entries table by cosine distance.
type PgvectorRetriever struct {
	db       pgxBeginner
	embedder Embedder
	probes   int
	logger   *logging.Logger
}

// NewPgvectorRetriever creates a Postgres-backed retriever. probes is the
// ivfflat.probes value forced per query; setting it to the index's lists
// parameter makes the scan effectively exhaustive, which is what a corpus of
// a few hundred entries needs. The planner's default of 1 probe silently
// drops relevant neighbors on small indexes.
func NewPgvectorRetriever(db pgxBeginner, embedder Embedder, probes int, logger *logging.Logger) *PgvectorRetriever {
	if db == nil {
		panic("knowledge: pgx pool required")
	}
	if embedder == nil {
		panic("knowledge: embedder required")
	}
	if probes <= 0 {
		probes = 100
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PgvectorRetriever{
		db:       db,
		embedder: embedder,
		probes:   probes,
		logger:   logger,
	}
}

var _ Retriever = (*PgvectorRetriever)(nil)

const searchQuery = `
	SELECT id, title, content, (1 - (embedding <=> $1))::float8 AS similarity
	FROM knowledge_entries
	ORDER BY embedding <=> $1 ASC
	LIMIT $2
`

// Retrieve returns up to limit entries ordered by descending similarity.
// Embedding or search failure degrades to an empty result with a log line;
// the conversation continues without context.
func (r *PgvectorRetriever) Retrieve(ctx context.Context, query string, limit int) []ScoredEntry {
	if limit <= 0 {
		limit = 3
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		r.logger.Error("knowledge: query embedding failed, continuing without context", "error", err)
		return nil
	}

	results, err := r.search(ctx, pgvector.NewVector(vectors[0]), limit)
	if err != nil {
		r.logger.Error("knowledge: similarity search failed, continuing without context", "error", err)
		return nil
	}
	return results
}

func (r *PgvectorRetriever) search(ctx context.Context, vec pgvector.Vector, limit int) ([]ScoredEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("knowledge: begin search tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL ivfflat.probes = %d", r.probes)); err != nil {
		return nil, fmt.Errorf("knowledge: set probes: %w", err)
	}

	rows, err := tx.Query(ctx, searchQuery, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("knowledge: search query: %w", err)
	}
	defer rows.Close()

	var out []ScoredEntry
	for rows.Next() {
		var e ScoredEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Content, &e.Similarity); err != nil {
			return nil, fmt.Errorf("knowledge: scan result: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("knowledge: commit search tx: %w", err)
	}
	return out, nil
}
