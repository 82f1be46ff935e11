package persist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// PGStore persists snapshots in a key-value table, for deployments without
// Redis. Schema:
//
//	CREATE TABLE flow_snapshots (
//	    key        TEXT PRIMARY KEY,
//	    value      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE flow_sessions (
//	    id         TEXT PRIMARY KEY,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PGStore struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

func NewPGStore(db *pgxpool.Pool, log *logrus.Logger) *PGStore {
	return &PGStore{db: db, log: log}
}

func (s *PGStore) Snapshot(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO flow_snapshots (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, payload)
	return err
}

func (s *PGStore) Restore(ctx context.Context, key string, dest interface{}) (bool, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM flow_snapshots WHERE key=$1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("discarding corrupt snapshot")
		return false, nil
	}
	return true, nil
}

func (s *PGStore) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `DELETE FROM flow_snapshots WHERE key = ANY($1)`, keys)
	return err
}

func (s *PGStore) AddSession(ctx context.Context, sessionID string) error {
	_, err := s.db.Exec(ctx, `INSERT INTO flow_sessions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, sessionID)
	return err
}

func (s *PGStore) RemoveSession(ctx context.Context, sessionID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM flow_sessions WHERE id=$1`, sessionID)
	return err
}

func (s *PGStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM flow_sessions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ Store = (*PGStore)(nil)
