package db

import "fmt"

func (d *DB) migrate() error {
	// Create migrations table if it doesn't exist
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	// Get current version
	var version int
	err := d.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}

	// Apply migrations
	migrations := []func(*DB) error{
		migrateV1,
		migrateV2,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](d); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := d.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

func migrateV1(d *DB) error {
	statements := []string{
		`CREATE TABLE switches (
			id TEXT PRIMARY KEY,
			mods_root TEXT NOT NULL,
			from_loader TEXT NOT NULL DEFAULT '',
			from_version TEXT NOT NULL DEFAULT '',
			to_loader TEXT NOT NULL,
			to_version TEXT NOT NULL,
			status TEXT NOT NULL,
			phase TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		)`,
		`CREATE INDEX idx_switches_root_started ON switches(mods_root, started_at)`,
	}

	for _, stmt := range statements {
		if _, err := d.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	return nil
}

func migrateV2(d *DB) error {
	// Per-switch file lists: role is "chosen" for the requested mods, "pending" for
	// files left unmoved by an interrupted switch.
	_, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS switch_files (
			switch_id TEXT NOT NULL,
			role TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY(switch_id, role, name),
			FOREIGN KEY(switch_id) REFERENCES switches(id) ON DELETE CASCADE
		)
	`)
	return err
}
