package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"plansync/assignment"
)

// SQLiteStore caches the remote planning snapshot locally. The cache
// is replaced wholesale on every pull; the remote store stays the
// source of truth.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS assignments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	work_order TEXT NOT NULL,
	part_number TEXT NOT NULL,
	work_center_code TEXT NOT NULL,
	operator_name TEXT NOT NULL DEFAULT '',
	operator_code TEXT NOT NULL DEFAULT '',
	batch REAL NOT NULL DEFAULT 0,
	op_numbers TEXT NOT NULL DEFAULT '',
	workday TEXT NOT NULL,
	shift TEXT NOT NULL,
	imported_from TEXT NOT NULL DEFAULT '',
	group_id TEXT NOT NULL DEFAULT '',
	item_id TEXT NOT NULL DEFAULT '',
	device_id TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ReplaceSnapshot swaps the cached snapshot for a fresh one inside a
// single transaction. Returns the number of rows written.
func (s *SQLiteStore) ReplaceSnapshot(records []assignment.Local) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM assignments;`); err != nil {
		return 0, fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
INSERT INTO assignments (
	work_order, part_number, work_center_code, operator_name, operator_code,
	batch, op_numbers, workday, shift, imported_from, group_id, item_id, device_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, record := range records {
		if _, err := stmt.Exec(
			record.WorkOrder,
			record.PartNumber,
			record.WorkCenterCode,
			record.OperatorName,
			record.Code,
			record.Batch,
			strings.Join(record.OpNumbers, ","),
			record.Date,
			record.Shift,
			record.ImportedFrom,
			record.GroupID,
			record.ItemID,
			record.DeviceID,
		); err != nil {
			return 0, fmt.Errorf("insert assignment %s: %w", record.IdentityKey(), err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}
	return inserted, nil
}

// ListAssignments returns the whole cached snapshot in insertion order.
func (s *SQLiteStore) ListAssignments() ([]assignment.Local, error) {
	return s.list(`
SELECT id, work_order, part_number, work_center_code, operator_name, operator_code,
	batch, op_numbers, workday, shift, imported_from, group_id, item_id, device_id
FROM assignments
ORDER BY id;`)
}

// ListERPAssignments returns only ERP-origin records, the subset the
// match engine classifies against.
func (s *SQLiteStore) ListERPAssignments() ([]assignment.Local, error) {
	return s.list(`
SELECT id, work_order, part_number, work_center_code, operator_name, operator_code,
	batch, op_numbers, workday, shift, imported_from, group_id, item_id, device_id
FROM assignments
WHERE imported_from = 'ERP'
ORDER BY id;`)
}

func (s *SQLiteStore) list(query string) ([]assignment.Local, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	out := make([]assignment.Local, 0, 64)
	for rows.Next() {
		var record assignment.Local
		var opNumbers string
		if err := rows.Scan(
			&record.ID,
			&record.WorkOrder,
			&record.PartNumber,
			&record.WorkCenterCode,
			&record.OperatorName,
			&record.Code,
			&record.Batch,
			&opNumbers,
			&record.Date,
			&record.Shift,
			&record.ImportedFrom,
			&record.GroupID,
			&record.ItemID,
			&record.DeviceID,
		); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if opNumbers != "" {
			record.OpNumbers = strings.Split(opNumbers, ",")
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return out, nil
}
