package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/stellium/internal/common"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// SaveChart stores a new chart. A fresh id is assigned when the record has none.
func (s *SQLiteStorage) SaveChart(ctx context.Context, record *model.ChartRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateChart(record); err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	activeKeys, err := encodeKeys(record.ActiveKeys)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO charts (id, name, notes, active_keys, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.ID, record.Name, record.Notes, activeKeys, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("chart %q: %w", record.Name, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save chart: %w", err)
	}

	if err := s.savePointsTx(ctx, tx, record.ID, record.Chart); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chart: %w", err)
	}

	record.CreatedAt, record.UpdatedAt = now, now
	return nil
}

// UpdateChart replaces the name, notes, active keys and points of an existing chart.
func (s *SQLiteStorage) UpdateChart(ctx context.Context, record *model.ChartRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateChart(record); err != nil {
		return err
	}
	if err := validateString(record.ID, "id"); err != nil {
		return err
	}

	activeKeys, err := encodeKeys(record.ActiveKeys)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE charts SET name = ?, notes = ?, active_keys = ?
		WHERE id = ?
	`, record.Name, record.Notes, activeKeys, record.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("chart %q: %w", record.Name, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update chart: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("chart %s: %w", record.ID, common.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chart_points WHERE chart_id = ?`, record.ID); err != nil {
		return fmt.Errorf("failed to clear chart points: %w", err)
	}
	if err := s.savePointsTx(ctx, tx, record.ID, record.Chart); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) savePointsTx(ctx context.Context, tx *sql.Tx, chartID string, chart model.Chart) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chart_points (chart_id, key, name, absolute_position, sign_position,
			sign, house, element, quality, retrograde)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range chart.Points() {
		// Unusable positions are stored as NULL and read back as NaN.
		position := sql.NullFloat64{Float64: p.AbsolutePosition, Valid: p.IsUsable()}
		signPosition := p.SignPosition
		if math.IsNaN(signPosition) || math.IsInf(signPosition, 0) {
			signPosition = 0
		}
		if _, err := stmt.ExecContext(ctx, chartID, p.Key, p.Name, position, signPosition,
			p.Sign, p.House, p.Element, p.Quality, p.Retrograde); err != nil {
			return fmt.Errorf("failed to save point %s: %w", p.Key, err)
		}
	}
	return nil
}

// GetChart retrieves a chart by id.
func (s *SQLiteStorage) GetChart(ctx context.Context, id string) (*model.ChartRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getChartTx(ctx, s.db, "id", id)
}

// GetChartByName retrieves a chart by its unique name.
func (s *SQLiteStorage) GetChartByName(ctx context.Context, name string) (*model.ChartRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getChartTx(ctx, s.db, "name", name)
}

// FindChart resolves a reference that may be either an id or a name.
func (s *SQLiteStorage) FindChart(ctx context.Context, ref string) (*model.ChartRecord, error) {
	if err := uuid.Validate(ref); err == nil {
		record, err := s.GetChart(ctx, ref)
		if err == nil || !errors.Is(err, common.ErrNotFound) {
			return record, err
		}
	}
	return s.GetChartByName(ctx, ref)
}

func (s *SQLiteStorage) getChartTx(ctx context.Context, q queryable, column, value string) (*model.ChartRecord, error) {
	var (
		record     model.ChartRecord
		activeKeys string
	)

	// column is one of two fixed identifiers, never user input.
	query := `SELECT id, name, notes, active_keys, created_at, updated_at FROM charts WHERE ` + column + ` = ?`
	err := q.QueryRowContext(ctx, query, value).Scan(
		&record.ID,
		&record.Name,
		&record.Notes,
		&activeKeys,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chart %s: %w", value, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chart: %w", err)
	}

	if record.ActiveKeys, err = decodeKeys(activeKeys); err != nil {
		return nil, err
	}

	charts, err := s.loadPointsTx(ctx, q, record.ID)
	if err != nil {
		return nil, err
	}
	record.Chart = charts[record.ID]
	if record.Chart == nil {
		record.Chart = model.Chart{}
	}

	return &record, nil
}

// ListCharts returns every stored chart ordered by name.
func (s *SQLiteStorage) ListCharts(ctx context.Context) ([]model.ChartRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, notes, active_keys, created_at, updated_at
		FROM charts
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ChartRecord
	for rows.Next() {
		var (
			record     model.ChartRecord
			activeKeys string
		)
		if err := rows.Scan(&record.ID, &record.Name, &record.Notes, &activeKeys,
			&record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chart: %w", err)
		}
		if record.ActiveKeys, err = decodeKeys(activeKeys); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating charts: %w", err)
	}

	points, err := s.loadPointsTx(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Chart = points[records[i].ID]
		if records[i].Chart == nil {
			records[i].Chart = model.Chart{}
		}
	}

	return records, nil
}

// loadPointsTx loads the points of one chart, or of every chart when chartID is empty.
func (s *SQLiteStorage) loadPointsTx(ctx context.Context, q queryable, chartID string) (map[string]model.Chart, error) {
	query := `
		SELECT chart_id, key, name, absolute_position, sign_position,
			sign, house, element, quality, retrograde
		FROM chart_points`
	var args []any
	if chartID != "" {
		query += ` WHERE chart_id = ?`
		args = append(args, chartID)
	}
	query += ` ORDER BY chart_id, key`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	charts := make(map[string]model.Chart)
	for rows.Next() {
		var (
			id       string
			p        model.Point
			position sql.NullFloat64
		)
		if err := rows.Scan(&id, &p.Key, &p.Name, &position, &p.SignPosition,
			&p.Sign, &p.House, &p.Element, &p.Quality, &p.Retrograde); err != nil {
			return nil, fmt.Errorf("failed to scan chart point: %w", err)
		}
		p.AbsolutePosition = math.NaN()
		if position.Valid {
			p.AbsolutePosition = position.Float64
		}
		if charts[id] == nil {
			charts[id] = make(model.Chart)
		}
		charts[id][p.Key] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chart points: %w", err)
	}
	return charts, nil
}

// DeleteChart removes a chart and its points.
func (s *SQLiteStorage) DeleteChart(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chart_points WHERE chart_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chart points: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chart: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("chart %s: %w", id, common.ErrNotFound)
	}

	return tx.Commit()
}

func encodeKeys(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return "", fmt.Errorf("failed to encode active keys: %w", err)
	}
	return string(data), nil
}

func decodeKeys(data string) ([]string, error) {
	var keys []string
	if data == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(data), &keys); err != nil {
		return nil, fmt.Errorf("%w: active keys: %w", common.ErrDatabaseCorrupted, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return keys, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
