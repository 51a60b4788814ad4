package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"timesift/dates"
	"timesift/timesheet"
)

type SQLiteStore struct {
	db *sql.DB
}

var ErrProjectNotFound = errors.New("project not found")

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
	// Dates are stored in ISO form so range queries sort lexicographically;
	// the canonical MM/DD/YYYY form is restored on read.
	const schema = `
CREATE TABLE IF NOT EXISTS timesheet_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_date TEXT NOT NULL,
	day TEXT NOT NULL,
	hours REAL NOT NULL CHECK(hours >= 0),
	activity TEXT NOT NULL CHECK(activity IN ('WORK', 'PTO')),
	client TEXT NOT NULL,
	project TEXT NOT NULL,
	employee_name TEXT NOT NULL,
	employee_id TEXT NOT NULL,
	sender_email TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(entry_date, activity, employee_id, client, project)
);

CREATE TABLE IF NOT EXISTS pto_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pto_date TEXT NOT NULL,
	hours REAL NOT NULL CHECK(hours >= 0),
	employee_name TEXT NOT NULL,
	employee_id TEXT NOT NULL,
	sender_email TEXT NOT NULL,
	source_file TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(pto_date, employee_id, source_file)
);

CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	employee_id TEXT NOT NULL,
	project TEXT NOT NULL,
	client TEXT NOT NULL,
	hours REAL NOT NULL CHECK(hours > 0),
	UNIQUE(employee_id, project, client)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// InsertEntries writes a batch inside one transaction. Rows already present
// under the UNIQUE constraint are ignored; the returned count covers only
// newly inserted rows.
func (s *SQLiteStore) InsertEntries(entries []timesheet.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	const insertStmt = `
INSERT OR IGNORE INTO timesheet_entries (
	entry_date,
	day,
	hours,
	activity,
	client,
	project,
	employee_name,
	employee_id,
	sender_email,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, entry := range entries {
		isoDate, err := isoDate(entry.Date)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert entry: %w", err)
		}

		createdAt := entry.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		res, err := stmt.Exec(
			isoDate,
			entry.Day,
			entry.Hours,
			string(entry.Activity),
			entry.Client,
			entry.Project,
			entry.EmployeeName,
			entry.EmployeeID,
			entry.SenderEmail,
			createdAt.Format(time.RFC3339),
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert entry: %w", err)
		}

		rows, err := res.RowsAffected()
		if err == nil && rows > 0 {
			inserted++
		}
	}

	// Rolled-back rows must not be reported as inserted.
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return inserted, nil
}

func (s *SQLiteStore) ListEntries() ([]timesheet.Entry, error) {
	const query = `
SELECT
	entry_date,
	day,
	hours,
	activity,
	client,
	project,
	employee_name,
	employee_id,
	sender_email,
	created_at
FROM timesheet_entries
ORDER BY entry_date, employee_id, activity;`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []timesheet.Entry
	for rows.Next() {
		var (
			entry      timesheet.Entry
			entryDate  string
			activity   string
			createdRaw string
		)
		if err := rows.Scan(
			&entryDate,
			&entry.Day,
			&entry.Hours,
			&activity,
			&entry.Client,
			&entry.Project,
			&entry.EmployeeName,
			&entry.EmployeeID,
			&entry.SenderEmail,
			&createdRaw,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		canonical, err := canonicalDate(entryDate)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Date = canonical
		entry.Activity = timesheet.Activity(activity)
		if createdAt, err := time.Parse(time.RFC3339, createdRaw); err == nil {
			entry.CreatedAt = createdAt
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// RecordPTO mirrors the PTO subset of a batch into pto_records, keyed by
// the document that produced it.
func (s *SQLiteStore) RecordPTO(entries []timesheet.Entry, sourceFile string) (int, error) {
	const insertStmt = `
INSERT OR IGNORE INTO pto_records (
	pto_date,
	hours,
	employee_name,
	employee_id,
	sender_email,
	source_file
) VALUES (?, ?, ?, ?, ?, ?);`

	inserted := 0
	for _, entry := range entries {
		if entry.Activity != timesheet.ActivityPTO {
			continue
		}
		isoDate, err := isoDate(entry.Date)
		if err != nil {
			return inserted, fmt.Errorf("record pto: %w", err)
		}

		res, err := s.db.Exec(insertStmt,
			isoDate,
			entry.Hours,
			entry.EmployeeName,
			entry.EmployeeID,
			entry.SenderEmail,
			sourceFile,
		)
		if err != nil {
			return inserted, fmt.Errorf("record pto: %w", err)
		}
		rows, err := res.RowsAffected()
		if err == nil && rows > 0 {
			inserted++
		}
	}

	return inserted, nil
}

// UpsertProject seeds or updates one employee/project/client assignment.
func (s *SQLiteStore) UpsertProject(employeeID, project, client string, hours float64) error {
	const upsertStmt = `
INSERT INTO projects (employee_id, project, client, hours)
VALUES (?, ?, ?, ?)
ON CONFLICT(employee_id, project, client) DO UPDATE SET hours = excluded.hours;`

	if _, err := s.db.Exec(upsertStmt, employeeID, project, client, hours); err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

// PTOHours looks up the daily PTO hours configured for an employee on a
// project. Satisfies the reconciler's PTO-hours source contract.
func (s *SQLiteStore) PTOHours(employeeID, project, client string) (float64, error) {
	const query = `
SELECT hours FROM projects
WHERE employee_id = ? AND project = ? AND client = ?;`

	var hours float64
	err := s.db.QueryRow(query, employeeID, project, client).Scan(&hours)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrProjectNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query project hours: %w", err)
	}
	return hours, nil
}

// DeleteAllEntries clears the timesheet_entries table, used before a full
// re-import.
func (s *SQLiteStore) DeleteAllEntries() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM timesheet_entries;`)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return deleted, nil
}

func isoDate(canonical string) (string, error) {
	parsed, err := dates.ParseCanonical(canonical)
	if err != nil {
		return "", fmt.Errorf("parse entry date %q: %w", canonical, err)
	}
	return parsed.Format("2006-01-02"), nil
}

func canonicalDate(iso string) (string, error) {
	parsed, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", fmt.Errorf("parse stored date %q: %w", iso, err)
	}
	return dates.Canonical(parsed), nil
}
