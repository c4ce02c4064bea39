package knowledge

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/drivelane/showroom-ai/pkg/logging"
)

func TestIngestor_AddEntries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO knowledge_entries").
		WithArgs("Hours", "Open 9-7 weekdays", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO knowledge_entries").
		WithArgs("Financing", "0% APR on select models", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	ing := NewIngestor(mock, &stubEmbedder{}, logging.Default())
	err = ing.AddEntries(context.Background(), []Entry{
		{Title: "Hours", Content: "Open 9-7 weekdays"},
		{Title: "Financing", Content: "0% APR on select models"},
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIngestor_EmbeddingFailureAborts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	ing := NewIngestor(mock, &stubEmbedder{err: errors.New("quota exceeded")}, logging.Default())
	if err := ing.AddEntries(context.Background(), []Entry{{Title: "x", Content: "y"}}); err == nil {
		t.Fatalf("expected error when embedding fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("database should not be touched: %v", err)
	}
}

func TestIngestor_EmptyBatchIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	emb := &stubEmbedder{}
	ing := NewIngestor(mock, emb, logging.Default())
	if err := ing.AddEntries(context.Background(), nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if emb.calls != 0 {
		t.Fatalf("embedder should not be called for an empty batch")
	}
}
