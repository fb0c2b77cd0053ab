// Package registry keeps a sqlite record of every ECP device discovery has seen.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no record exists for an address
var ErrNotFound = errors.New("device not found in registry")

// Record is one discovered device
type Record struct {
	Address   string    `json:"address"`
	Serial    string    `json:"serial,omitempty"`
	Model     string    `json:"model,omitempty"`
	Name      string    `json:"name,omitempty"`
	PowerMode string    `json:"power_mode,omitempty"`
	ScanID    string    `json:"scan_id,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	SeenCount int       `json:"seen_count"`
}

// Store handles SQLite registry operations
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the registry at dbPath
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS devices (
			address TEXT PRIMARY KEY,
			serial TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			power_mode TEXT NOT NULL DEFAULT '',
			scan_id TEXT NOT NULL DEFAULT '',
			first_seen INTEGER NOT NULL, -- unix milliseconds
			last_seen INTEGER NOT NULL,
			seen_count INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_devices_last_seen ON devices(last_seen)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Upsert records a sighting of record.Address. A new address is inserted; a known one has its
// last_seen and seen_count bumped, and keeps previous details for any field left empty.
func (s *Store) Upsert(record Record) (*Record, error) {
	if record.Address == "" {
		return nil, fmt.Errorf("address is required")
	}

	seen := s.now().UnixMilli()
	query := `INSERT INTO devices (address, serial, model, name, power_mode, scan_id, first_seen, last_seen, seen_count)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
			  ON CONFLICT(address) DO UPDATE SET
				serial = CASE WHEN excluded.serial != '' THEN excluded.serial ELSE devices.serial END,
				model = CASE WHEN excluded.model != '' THEN excluded.model ELSE devices.model END,
				name = CASE WHEN excluded.name != '' THEN excluded.name ELSE devices.name END,
				power_mode = CASE WHEN excluded.power_mode != '' THEN excluded.power_mode ELSE devices.power_mode END,
				scan_id = excluded.scan_id,
				last_seen = excluded.last_seen,
				seen_count = devices.seen_count + 1`

	_, err := s.db.Exec(query,
		record.Address, record.Serial, record.Model, record.Name, record.PowerMode, record.ScanID, seen, seen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device: %w", err)
	}

	return s.Get(record.Address)
}

// Get returns the record for address
func (s *Store) Get(address string) (*Record, error) {
	query := `SELECT address, serial, model, name, power_mode, scan_id, first_seen, last_seen, seen_count
			  FROM devices WHERE address = ?`

	record, err := scanRecord(s.db.QueryRow(query, address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return record, nil
}

// List returns every record, most recently seen first
func (s *Store) List() ([]Record, error) {
	query := `SELECT address, serial, model, name, power_mode, scan_id, first_seen, last_seen, seen_count
			  FROM devices ORDER BY last_seen DESC, address ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// Delete removes the record for address
func (s *Store) Delete(address string) error {
	result, err := s.db.Exec(`DELETE FROM devices WHERE address = ?`, address)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var firstSeen, lastSeen int64
	err := row.Scan(
		&record.Address, &record.Serial, &record.Model, &record.Name, &record.PowerMode,
		&record.ScanID, &firstSeen, &lastSeen, &record.SeenCount,
	)
	if err != nil {
		return nil, err
	}
	record.FirstSeen = time.UnixMilli(firstSeen)
	record.LastSeen = time.UnixMilli(lastSeen)
	return &record, nil
}
