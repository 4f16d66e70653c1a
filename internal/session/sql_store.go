package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kidsvids/internal/database"
)

// SQLStore persists sessions in the device_sessions table
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a store on the application database
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Load(ctx context.Context, key string) (State, error) {
	var parentID, kidID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT parent_id, selected_kid_id FROM device_sessions WHERE session_key = ?", key).
		Scan(&parentID, &kidID)
	if err == sql.ErrNoRows {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load device session: %w", err)
	}

	var st State
	if parentID.Valid {
		st.ParentID = &parentID.Int64
	}
	if kidID.Valid {
		st.SelectedKidID = &kidID.Int64
	}
	return st, nil
}

func (s *SQLStore) Save(ctx context.Context, key string, state State) error {
	query := s.db.Dialect.UpsertQuery(database.TableDeviceSessions,
		[]string{"session_key"},
		[]string{"session_key", "parent_id", "selected_kid_id", "updated_at"})

	_, err := s.db.ExecContext(ctx, query, key, nullable(state.ParentID), nullable(state.SelectedKidID), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save device session: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM device_sessions WHERE session_key = ?", key); err != nil {
		return fmt.Errorf("failed to clear device session: %w", err)
	}
	return nil
}

func nullable(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
