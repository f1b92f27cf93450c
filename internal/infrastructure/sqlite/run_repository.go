package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zjrosen/pytutor/internal/session"
)

const runColumns = `id, guid, locale, source, inputs, state, output, explanation,
	is_error, needs_input, input_prompt, error_lines, created_at`

// RunRepository persists session turns.
type RunRepository struct {
	db *sql.DB
}

var _ session.Recorder = (*RunRepository)(nil)

func scanRun(scanner interface{ Scan(...any) error }) (*RunModel, error) {
	var m RunModel
	err := scanner.Scan(
		&m.ID, &m.GUID, &m.Locale, &m.Source, &m.Inputs, &m.State, &m.Output, &m.Explanation,
		&m.IsError, &m.NeedsInput, &m.InputPrompt, &m.ErrorLines, &m.CreatedAt,
	)
	return &m, err
}

// Record inserts one turn.
func (r *RunRepository) Record(ctx context.Context, turn session.Turn) error {
	m, err := toRunModel(turn)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO runs (
			guid, locale, source, inputs, state, output, explanation,
			is_error, needs_input, input_prompt, error_lines, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.GUID, m.Locale, m.Source, m.Inputs, m.State, m.Output, m.Explanation,
		m.IsError, m.NeedsInput, m.InputPrompt, m.ErrorLines, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// ListRecent returns up to limit turns, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return collect(rows)
}

// FindByGUID returns every turn of one session in the order they happened.
func (r *RunRepository) FindByGUID(ctx context.Context, guid string) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE guid = ? ORDER BY id ASC`, guid)
	if err != nil {
		return nil, fmt.Errorf("failed to find runs by guid: %w", err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Run, error) {
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := m.toRun()
		if err != nil {
			return nil, fmt.Errorf("failed to decode run %d: %w", m.ID, err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return out, nil
}
