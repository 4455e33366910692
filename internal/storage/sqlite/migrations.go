// Package sqlite - database migrations
package sqlite

import (
	"database/sql"
	"fmt"
)

// migration is one forward-only, idempotent step. Functions must tolerate
// being run against a database that already has their effect applied (e.g.
// via CREATE TABLE IF NOT EXISTS), since schema_meta only records the
// highest version reached, not which individual steps already ran.
type migration struct {
	version int
	name    string
	fn      func(*sql.DB) error
}

// migrationsList is ordered by version. The current schema version is
// derived from the last entry rather than hardcoded, so the two can never
// drift apart.
var migrationsList = []migration{
	{1, "base_tables", migrateBaseTables},
	{2, "tm_fts_index", migrateTMFTSIndex},
	{3, "segment_source_text_old", migrateSegmentSourceTextOld},
}

func currentSchemaVersion() int {
	v := 0
	for _, m := range migrationsList {
		if m.version > v {
			v = m.version
		}
	}
	return v
}

func migrateBaseTables(db *sql.DB) error {
	_, err := db.Exec(schemaV1)
	return err
}

func migrateTMFTSIndex(db *sql.DB) error {
	_, err := db.Exec(`
CREATE VIRTUAL TABLE IF NOT EXISTS tm_fts USING fts5(
    tm_id UNINDEXED,
    project_id UNINDEXED,
    source_locale UNINDEXED,
    target_locale UNINDEXED,
    source_text,
    target_text
);
`)
	if err != nil {
		return err
	}
	// tm_entries may already hold rows from a pre-v2 database; backfill them
	// the same way the FTS mirror is maintained incrementally afterwards.
	rows, err := db.Query(`SELECT id, project_id, source_locale, target_locale, source_text, target_text FROM tm_entries`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type row struct {
		id, projectID, sourceLocale, targetLocale, sourceText, targetText string
	}
	var backlog []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.projectID, &r.sourceLocale, &r.targetLocale, &r.sourceText, &r.targetText); err != nil {
			return err
		}
		backlog = append(backlog, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, r := range backlog {
		if _, err := db.Exec(`DELETE FROM tm_fts WHERE tm_id = ?`, r.id); err != nil {
			return err
		}
		if _, err := db.Exec(
			`INSERT INTO tm_fts(tm_id, project_id, source_locale, target_locale, source_text, target_text) VALUES (?, ?, ?, ?, ?, ?)`,
			r.id, r.projectID, r.sourceLocale, r.targetLocale, r.sourceText, r.targetText,
		); err != nil {
			return err
		}
	}
	return nil
}

func migrateSegmentSourceTextOld(db *sql.DB) error {
	if columnExists(db, "segments", "source_text_old") {
		return nil
	}
	_, err := db.Exec(`ALTER TABLE segments ADD COLUMN source_text_old TEXT`)
	return err
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &primaryKey); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}

// RunMigrations advances the database to the highest known schema version.
// It is forward-only: there is no downgrade path, and a reader at a newer
// on-disk version than this binary knows about must refuse to proceed rather
// than silently truncate its view of the schema.
func RunMigrations(db *sql.DB) error {
	_, err := db.Exec("PRAGMA foreign_keys = OFF")
	if err != nil {
		return fmt.Errorf("failed to disable foreign keys for migrations: %w", err)
	}
	defer func() { _, _ = db.Exec("PRAGMA foreign_keys = ON") }()

	if _, err := db.Exec("BEGIN EXCLUSIVE"); err != nil {
		return fmt.Errorf("failed to acquire exclusive lock for migrations: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = db.Exec("ROLLBACK")
		}
	}()

	onDisk, err := readSchemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema_meta: %w", err)
	}
	latest := currentSchemaVersion()
	if onDisk > latest {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d); refusing to open", onDisk, latest)
	}

	for _, m := range migrationsList {
		if m.version <= onDisk {
			continue
		}
		if err := m.fn(db); err != nil {
			return fmt.Errorf("migration %s (v%d) failed: %w", m.name, m.version, err)
		}
	}

	if err := writeSchemaVersion(db, latest); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if _, err := db.Exec("COMMIT"); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	committed = true
	return nil
}

func readSchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='schema_meta'`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var value string
	err = db.QueryRow(`SELECT value FROM schema_meta WHERE key = 'schema_version'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var version int
	if _, err := fmt.Sscanf(value, "%d", &version); err != nil {
		return 0, err
	}
	return version, nil
}

func writeSchemaVersion(db *sql.DB, version int) error {
	_, err := db.Exec(
		`INSERT INTO schema_meta(key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%d", version),
	)
	return err
}
