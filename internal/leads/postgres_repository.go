package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// pgxQuerier is the slice of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// upsertQuery relies on (xmax = 0) to distinguish the inserting call from
// every later update of the same session row.
const upsertQuery = `
	INSERT INTO leads (
		session_id, name, email, phone, vehicle_type, make_model,
		new_or_used, budget_range, trade_in, financing, priorities,
		qualification_score, conversation_history
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (session_id) DO UPDATE SET
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		vehicle_type = EXCLUDED.vehicle_type,
		make_model = EXCLUDED.make_model,
		new_or_used = EXCLUDED.new_or_used,
		budget_range = EXCLUDED.budget_range,
		trade_in = EXCLUDED.trade_in,
		financing = EXCLUDED.financing,
		priorities = EXCLUDED.priorities,
		qualification_score = EXCLUDED.qualification_score,
		conversation_history = EXCLUDED.conversation_history,
		updated_at = CURRENT_TIMESTAMP
	RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
`

// Upsert inserts or updates the lead row keyed by session id and reports
// whether this call created it.
func (r *PostgresRepository) Upsert(ctx context.Context, lead *Lead) (bool, error) {
	if lead == nil || lead.SessionID == "" {
		return false, ErrMissingSessionID
	}

	history, err := json.Marshal(lead.History)
	if err != nil {
		return false, fmt.Errorf("leads: encode history: %w", err)
	}

	var inserted bool
	row := r.db.QueryRow(ctx, upsertQuery,
		lead.SessionID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.VehicleType,
		lead.MakeModel,
		lead.NewOrUsed,
		lead.Budget,
		lead.TradeIn,
		lead.Financing,
		lead.Priorities,
		lead.Score,
		history,
	)
	if err := row.Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt, &inserted); err != nil {
		return false, fmt.Errorf("leads: upsert failed: %w", err)
	}
	return inserted, nil
}

// GetBySession fetches the lead for a session id.
func (r *PostgresRepository) GetBySession(ctx context.Context, sessionID string) (*Lead, error) {
	query := `
		SELECT id, session_id, name, email, phone, vehicle_type, make_model,
			new_or_used, budget_range, trade_in, financing, priorities,
			qualification_score, conversation_history, created_at, updated_at
		FROM leads
		WHERE session_id = $1
	`
	row := r.db.QueryRow(ctx, query, sessionID)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads ordered by recency.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	query := `
		SELECT id, session_id, name, email, phone, vehicle_type, make_model,
			new_or_used, budget_range, trade_in, financing, priorities,
			qualification_score, conversation_history, created_at, updated_at
		FROM leads
		WHERE qualification_score >= $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, filter.MinScore, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	var history []byte
	if err := row.Scan(
		&lead.ID,
		&lead.SessionID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.VehicleType,
		&lead.MakeModel,
		&lead.NewOrUsed,
		&lead.Budget,
		&lead.TradeIn,
		&lead.Financing,
		&lead.Priorities,
		&lead.Score,
		&history,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(history) > 0 {
		// Snapshot decoding is best-effort; a malformed blob should not hide
		// the contact fields from the listing.
		_ = json.Unmarshal(history, &lead.History)
	}
	return &lead, nil
}
