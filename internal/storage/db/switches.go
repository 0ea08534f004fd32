package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mcmodman/internal/domain"
)

// SwitchStatus is the outcome recorded for a journaled switch
type SwitchStatus string

const (
	SwitchStarted   SwitchStatus = "started"   // commit began, no outcome recorded yet
	SwitchCompleted SwitchStatus = "completed" // active state updated
	SwitchPartial   SwitchStatus = "partial"   // interrupted mid-phase; re-run to finish
	SwitchFailed    SwitchStatus = "failed"    // rejected before any file moved
)

const (
	roleChosen  = "chosen"
	rolePending = "pending"
)

// SwitchRecord is one journaled commit
type SwitchRecord struct {
	ID         string
	ModsRoot   string
	From       domain.ActiveState
	To         domain.ProfileKey
	Mods       []string // chosen mod files
	Status     SwitchStatus
	Phase      domain.SwitchPhase
	Pending    []string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// BeginSwitch journals the start of a commit
func (d *DB) BeginSwitch(rec *SwitchRecord) error {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	rec.Status = SwitchStarted

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO switches (id, mods_root, from_loader, from_version, to_loader, to_version, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ModsRoot, rec.From.ModLoader, rec.From.Version, string(rec.To.Loader), rec.To.Version, string(rec.Status), rec.StartedAt)
	if err != nil {
		return fmt.Errorf("saving switch: %w", err)
	}

	if err := insertFiles(tx, rec.ID, roleChosen, rec.Mods); err != nil {
		return err
	}

	return tx.Commit()
}

// FinishSwitch records the outcome of a journaled commit
func (d *DB) FinishSwitch(id string, status SwitchStatus, phase domain.SwitchPhase, pending []string, errMsg string) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE switches SET status = ?, phase = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, string(status), string(phase), errMsg, time.Now(), id)
	if err != nil {
		return fmt.Errorf("updating switch: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("switch not found: %s", id)
	}

	if _, err := tx.Exec(`DELETE FROM switch_files WHERE switch_id = ? AND role = ?`, id, rolePending); err != nil {
		return fmt.Errorf("clearing pending files: %w", err)
	}
	if err := insertFiles(tx, id, rolePending, pending); err != nil {
		return err
	}

	return tx.Commit()
}

func insertFiles(tx *sql.Tx, id, role string, names []string) error {
	for i, name := range names {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO switch_files (switch_id, role, name, position) VALUES (?, ?, ?, ?)
		`, id, role, name, i); err != nil {
			return fmt.Errorf("saving %s file %s: %w", role, name, err)
		}
	}
	return nil
}

// ListSwitches returns the most recent switches for a mods root, newest first.
// A limit of zero or less returns all of them.
func (d *DB) ListSwitches(modsRoot string, limit int) ([]SwitchRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.Query(`
		SELECT id, mods_root, from_loader, from_version, to_loader, to_version, status, phase, error, started_at, finished_at
		FROM switches
		WHERE mods_root = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, modsRoot, limit)
	if err != nil {
		return nil, fmt.Errorf("querying switches: %w", err)
	}

	var records []SwitchRecord
	for rows.Next() {
		rec, err := scanSwitch(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating switches: %w", err)
	}
	rows.Close()

	// File lists are loaded after rows is closed; the pool holds a single connection.
	for i := range records {
		if err := d.loadFiles(&records[i]); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// LastSwitch returns the most recent switch for a mods root, or nil if none was journaled
func (d *DB) LastSwitch(modsRoot string) (*SwitchRecord, error) {
	row := d.QueryRow(`
		SELECT id, mods_root, from_loader, from_version, to_loader, to_version, status, phase, error, started_at, finished_at
		FROM switches
		WHERE mods_root = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`, modsRoot)

	rec, err := scanSwitch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := d.loadFiles(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSwitch(s scanner) (*SwitchRecord, error) {
	var (
		rec        SwitchRecord
		toLoader   string
		status     string
		phase      string
		finishedAt sql.NullTime
	)

	err := s.Scan(
		&rec.ID, &rec.ModsRoot,
		&rec.From.ModLoader, &rec.From.Version,
		&toLoader, &rec.To.Version,
		&status, &phase, &rec.Error,
		&rec.StartedAt, &finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning switch: %w", err)
	}

	rec.To.Loader = domain.Loader(toLoader)
	rec.Status = SwitchStatus(status)
	rec.Phase = domain.SwitchPhase(phase)
	if finishedAt.Valid {
		t := finishedAt.Time
		rec.FinishedAt = &t
	}

	return &rec, nil
}

func (d *DB) loadFiles(rec *SwitchRecord) error {
	rows, err := d.Query(`
		SELECT role, name FROM switch_files
		WHERE switch_id = ?
		ORDER BY role, position
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("querying switch files: %w", err)
	}
	defer rows.Close()

	rec.Mods = nil
	rec.Pending = nil
	for rows.Next() {
		var role, name string
		if err := rows.Scan(&role, &name); err != nil {
			return fmt.Errorf("scanning switch file: %w", err)
		}
		switch role {
		case roleChosen:
			rec.Mods = append(rec.Mods, name)
		case rolePending:
			rec.Pending = append(rec.Pending, name)
		}
	}

	return rows.Err()
}
