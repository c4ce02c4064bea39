package knowledge

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/drivelane/showroom-ai/pkg/logging"
)

type stubEmbedder struct {
	vectors [][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.vectors != nil {
		return s.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func TestPgvectorRetriever_ReturnsRankedEntries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL ivfflat.probes = 100").WillReturnResult(pgxmock.NewResult("SET", 0))
	rows := pgxmock.NewRows([]string{"id", "title", "content", "similarity"}).
		AddRow(int64(1), "Financing", "We offer 0% APR on select models.", 0.91).
		AddRow(int64(2), "Trade-ins", "Trade-in appraisals take 20 minutes.", 0.74)
	mock.ExpectQuery("SELECT id, title, content").WithArgs(pgxmock.AnyArg(), 2).WillReturnRows(rows)
	mock.ExpectCommit()

	r := NewPgvectorRetriever(mock, &stubEmbedder{}, 100, logging.Default())
	got := r.Retrieve(context.Background(), "do you offer financing?", 2)

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Title != "Financing" || got[0].Similarity < got[1].Similarity {
		t.Fatalf("expected results ordered by similarity, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPgvectorRetriever_EmbeddingFailureReturnsEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	emb := &stubEmbedder{err: errors.New("quota exceeded")}
	r := NewPgvectorRetriever(mock, emb, 100, logging.Default())

	got := r.Retrieve(context.Background(), "what trucks do you have?", 3)
	if got != nil {
		t.Fatalf("expected nil result on embedding failure, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("database should not be touched: %v", err)
	}
}

func TestPgvectorRetriever_SearchFailureReturnsEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL ivfflat.probes").WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery("SELECT id, title, content").WithArgs(pgxmock.AnyArg(), 3).WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	r := NewPgvectorRetriever(mock, &stubEmbedder{}, 100, logging.Default())
	got := r.Retrieve(context.Background(), "hours?", 3)
	if got != nil {
		t.Fatalf("expected nil result on search failure, got %+v", got)
	}
}

func TestPgvectorRetriever_DefaultsLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL ivfflat.probes").WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery("SELECT id, title, content").WithArgs(pgxmock.AnyArg(), 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "content", "similarity"}))
	mock.ExpectCommit()

	r := NewPgvectorRetriever(mock, &stubEmbedder{}, 0, logging.Default())
	if got := r.Retrieve(context.Background(), "anything", 0); got != nil {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
