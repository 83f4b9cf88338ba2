package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"earshot/internal/services"
)

const contextColumns = "id, name, description, created_at, updated_at"

func scanContext(scanner interface{ Scan(dest ...any) error }) (*Context, error) {
	var (
		item       Context
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&item.ID, &item.Name, &item.Description, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	item.CreatedAt = parseTime(createdRaw)
	item.UpdatedAt = parseTime(updatedRaw)
	return &item, nil
}

// ClampPage normalises list paging arguments.
func ClampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return offset, limit
}

// ListContexts returns a page of contexts ordered by creation.
func (s *Store) ListContexts(ctx context.Context, offset, limit int) ([]Context, error) {
	offset, limit = ClampPage(offset, limit)
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+contextColumns+` FROM contexts ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list contexts: %w", err)
	}
	defer rows.Close()

	contexts := make([]Context, 0)
	for rows.Next() {
		item, err := scanContext(rows)
		if err != nil {
			return nil, fmt.Errorf("scan context: %w", err)
		}
		contexts = append(contexts, *item)
	}
	return contexts, rows.Err()
}

// CreateContext inserts a new, empty context.
func (s *Store) CreateContext(ctx context.Context, name, description string) (*Context, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create context", "name is required", nil)
	}
	timestamp := formatTime(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO contexts (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, strings.TrimSpace(description), timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert context: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getContextRow(ctx, id)
}

// Context returns the bare context row.
func (s *Store) Context(ctx context.Context, id int64) (*Context, error) {
	return s.getContextRow(ctx, id)
}

func (s *Store) getContextRow(ctx context.Context, id int64) (*Context, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+contextColumns+` FROM contexts WHERE id = ?`, id)
	item, err := scanContext(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("context", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get context: %w", err)
	}
	return item, nil
}

// UpdateDescription replaces the context summary text.
func (s *Store) UpdateDescription(ctx context.Context, id int64, description string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE contexts SET description = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(description), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update description: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound("context", id)
	}
	return nil
}

// Stats counts the rows held in every table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	targets := []struct {
		table string
		dest  *int
	}{
		{"contexts", &stats.Contexts},
		{"speakers", &stats.Speakers},
		{"codewords", &stats.Codewords},
		{"audio_samples", &stats.AudioSamples},
		{"utterances", &stats.Utterances},
	}
	for _, target := range targets {
		row := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM `+target.table)
		if err := row.Scan(target.dest); err != nil {
			return Stats{}, fmt.Errorf("count %s: %w", target.table, err)
		}
	}
	return stats, nil
}

func (s *Store) requireContext(ctx context.Context, tx *sql.Tx, id int64) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM contexts WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check context: %w", err)
	}
	if exists == 0 {
		return notFound("context", id)
	}
	return nil
}

func (s *Store) touchContext(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, `UPDATE contexts SET updated_at = ? WHERE id = ?`, formatTime(time.Now()), id); err != nil {
		return fmt.Errorf("touch context: %w", err)
	}
	return nil
}

func notFound(kind string, id int64) error {
	return services.Wrap(services.ErrNotFound, "store", "lookup", fmt.Sprintf("%s %d", kind, id), nil)
}
