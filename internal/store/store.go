package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spectrasuite/internal/provenance"
	"spectrasuite/internal/session"
	"spectrasuite/internal/spectrum"
	"spectrasuite/internal/units"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on any schema change; a mismatching database must
// be recreated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different schema
// version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages session persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the session database. The sibling .lock
// file guards against concurrent invocations; Open fails fast when another
// process holds it.
func Open(path string) (*Store, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("session database %s is in use by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the file lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.lock != nil {
		errs = append(errs, s.lock.Unlock())
	}
	return errors.Join(errs...)
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// HasSession reports whether a session snapshot has ever been saved.
func (s *Store) HasSession(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM session").Scan(&count); err != nil {
		return false, fmt.Errorf("count session rows: %w", err)
	}
	return count > 0, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SaveSession replaces the persisted state with a snapshot of the given
// session. The session row keeps its uuid across saves.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := s.sessionID(ctx, tx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE session SET axis_unit = ?, display_mode = ? WHERE id = ?",
		string(sess.AxisUnit()), string(sess.DisplayMode()), id,
	); err != nil {
		return fmt.Errorf("update session row: %w", err)
	}

	for _, table := range []string{"traces", "ingest_ledger"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for position, trace := range sess.Traces() {
		if err := insertTrace(ctx, tx, position, trace); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *Store) sessionID(ctx context.Context, tx *sql.Tx) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, "SELECT id FROM session LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			"INSERT INTO session (id, created_at, axis_unit, display_mode) VALUES (?, ?, ?, ?)",
			id, time.Now().UTC().Format(time.RFC3339Nano), string(units.Nanometer), string(session.DisplayFlux))
	}
	if err != nil {
		return "", fmt.Errorf("session row: %w", err)
	}
	return id, nil
}

func insertTrace(ctx context.Context, tx *sql.Tx, position int, trace *session.Trace) error {
	spec := trace.Spectrum
	metadataJSON, err := json.Marshal(spec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", trace.ID, err)
	}
	provenanceJSON, err := provenance.EncodeLog(spec.Provenance)
	if err != nil {
		return fmt.Errorf("marshal provenance for %s: %w", trace.ID, err)
	}

	var uncertainties []byte
	if spec.Uncertainties != nil {
		uncertainties = encodeFloats(spec.Uncertainties)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO traces (
            trace_id, position, label, visible, source_hash, value_mode,
            value_unit, wavelengths, "values", uncertainties,
            metadata_json, provenance_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trace.ID, position, spec.Label, boolToInt(trace.Visible), spec.SourceHash,
		string(spec.ValueMode), spec.ValueUnit,
		encodeFloats(spec.WavelengthVacNm), encodeFloats(spec.Values), uncertainties,
		string(metadataJSON), string(provenanceJSON),
	); err != nil {
		return fmt.Errorf("insert trace %s: %w", trace.ID, err)
	}

	hash, identifier := spec.Fingerprint()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ingest_ledger (source_hash, identifier, trace_id) VALUES (?, ?, ?)",
		hash, identifier, trace.ID,
	); err != nil {
		return fmt.Errorf("insert ledger row for %s: %w", trace.ID, err)
	}
	return nil
}

// LoadSession rebuilds a session from the persisted snapshot. An empty
// database yields an empty session.
func (s *Store) LoadSession(ctx context.Context, logger *slog.Logger) (*session.Session, error) {
	sess := session.New(logger)

	var axisUnit, displayMode string
	err := s.db.QueryRowContext(ctx, "SELECT axis_unit, display_mode FROM session LIMIT 1").
		Scan(&axisUnit, &displayMode)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return sess, nil
	case err != nil:
		return nil, fmt.Errorf("read session row: %w", err)
	}
	sess.SetAxisUnit(units.Unit(axisUnit))
	sess.SetDisplayMode(session.DisplayMode(displayMode))

	rows, err := s.db.QueryContext(ctx,
		`SELECT trace_id, label, visible, source_hash, value_mode, value_unit,
            wavelengths, "values", uncertainties, metadata_json, provenance_json
         FROM traces ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			traceID, label, sourceHash, valueMode, valueUnit string
			visible                                          int
			waveBlob, valuesBlob, uncBlob                    []byte
			metadataJSON, provenanceJSON                     string
		)
		if err := rows.Scan(&traceID, &label, &visible, &sourceHash, &valueMode, &valueUnit,
			&waveBlob, &valuesBlob, &uncBlob, &metadataJSON, &provenanceJSON); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}

		spec := &spectrum.CanonicalSpectrum{
			Label:           label,
			WavelengthVacNm: decodeFloats(waveBlob),
			Values:          decodeFloats(valuesBlob),
			ValueMode:       spectrum.ValueMode(valueMode),
			ValueUnit:       valueUnit,
			SourceHash:      sourceHash,
		}
		if uncBlob != nil {
			spec.Uncertainties = decodeFloats(uncBlob)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &spec.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", traceID, err)
		}
		events, err := provenance.DecodeLog([]byte(provenanceJSON))
		if err != nil {
			return nil, fmt.Errorf("decode provenance for %s: %w", traceID, err)
		}
		spec.Provenance = events

		if err := sess.Restore(traceID, spec, visible != 0); err != nil {
			return nil, fmt.Errorf("restore trace %s: %w", traceID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traces: %w", err)
	}
	return sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
