package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fasttrack/internal/modules/backend/domain"
	backendout "fasttrack/internal/modules/backend/port/out"
	apperrors "fasttrack/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const (
	// Fixed width keeps lexical order of stored timestamps chronological.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
	pragmas    = "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
)

type SQLiteRecordRepository struct {
	db *sql.DB
}

// OpenDB opens the fastbase database. ":memory:" gives a private in-memory database.
func OpenDB(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", "file:"+dbPath+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func NewSQLiteRecordRepository(ctx context.Context, db *sql.DB) (backendout.RecordRepository, error) {
	r := &SQLiteRecordRepository{db: db}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecordRepository) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS fasting_records (
  id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT,
  target_duration REAL NOT NULL,
  actual_duration REAL,
  completed INTEGER NOT NULL DEFAULT 0,
  manually_added INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (user_id, id)
);
CREATE INDEX IF NOT EXISTS idx_fasting_records_user_start ON fasting_records(user_id, start_time DESC);
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create fasting_records table: %w", err)
	}
	return nil
}

const selectColumns = `id, user_id, type, start_time, end_time, target_duration, actual_duration, completed, manually_added, created_at, updated_at`

func (r *SQLiteRecordRepository) List(ctx context.Context, userID string) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+selectColumns+`
FROM fasting_records
WHERE user_id = ?
ORDER BY start_time DESC, id ASC;
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (r *SQLiteRecordRepository) Get(ctx context.Context, userID, id string) (domain.Record, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+selectColumns+`
FROM fasting_records
WHERE user_id = ? AND id = ?;
`, userID, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("record %s: %w", id, apperrors.ErrNotFound)
	}
	return rec, err
}

func (r *SQLiteRecordRepository) Upsert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	const stmt = `
INSERT INTO fasting_records (id, user_id, type, start_time, end_time, target_duration, actual_duration, completed, manually_added, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, id) DO UPDATE SET
  type = excluded.type,
  start_time = excluded.start_time,
  end_time = excluded.end_time,
  target_duration = excluded.target_duration,
  actual_duration = excluded.actual_duration,
  completed = excluded.completed,
  manually_added = excluded.manually_added,
  updated_at = excluded.updated_at;
`
	if _, err := r.db.ExecContext(ctx, stmt, args(rec)...); err != nil {
		return domain.Record{}, fmt.Errorf("upsert record: %w", err)
	}
	return r.Get(ctx, rec.UserID, rec.ID)
}

func (r *SQLiteRecordRepository) Update(ctx context.Context, rec domain.Record) error {
	const stmt = `
UPDATE fasting_records SET
  type = ?, start_time = ?, end_time = ?, target_duration = ?, actual_duration = ?,
  completed = ?, manually_added = ?, updated_at = ?
WHERE user_id = ? AND id = ?;
`
	a := args(rec)
	res, err := r.db.ExecContext(ctx, stmt, a[2], a[3], a[4], a[5], a[6], a[7], a[8], a[10], rec.UserID, rec.ID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return requireRow(res, rec.ID)
}

func (r *SQLiteRecordRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fasting_records WHERE user_id = ? AND id = ?;`, userID, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// args follows the INSERT column order.
func args(rec domain.Record) []any {
	var end, actual any
	if rec.EndTime != nil {
		end = rec.EndTime.UTC().Format(timeLayout)
	}
	if rec.ActualDuration != nil {
		actual = *rec.ActualDuration
	}
	return []any{
		rec.ID,
		rec.UserID,
		rec.Type,
		rec.StartTime.UTC().Format(timeLayout),
		end,
		rec.TargetDuration,
		actual,
		rec.Completed,
		rec.ManuallyAdded,
		rec.CreatedAt.UTC().Format(timeLayout),
		rec.UpdatedAt.UTC().Format(timeLayout),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (domain.Record, error) {
	var rec domain.Record
	var start, created, updated string
	var end sql.NullString
	var actual sql.NullFloat64
	var completed, manuallyAdded bool
	if err := s.Scan(&rec.ID, &rec.UserID, &rec.Type, &start, &end, &rec.TargetDuration, &actual, &completed, &manuallyAdded, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Record{}, err
		}
		return domain.Record{}, fmt.Errorf("scan record: %w", err)
	}
	rec.Completed = completed
	rec.ManuallyAdded = manuallyAdded

	var err error
	if rec.StartTime, err = time.Parse(timeLayout, start); err != nil {
		return domain.Record{}, fmt.Errorf("record %s: start_time: %w", rec.ID, err)
	}
	if end.Valid {
		t, err := time.Parse(timeLayout, end.String)
		if err != nil {
			return domain.Record{}, fmt.Errorf("record %s: end_time: %w", rec.ID, err)
		}
		rec.EndTime = &t
	}
	if actual.Valid {
		v := actual.Float64
		rec.ActualDuration = &v
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return rec, nil
}
