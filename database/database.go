package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "modernc.org/sqlite"

	"grievance-processor/config"
	"grievance-processor/models"
)

// Database handles all complaint persistence. The store is a single-writer
// embedded SQLite database; WAL mode plus a busy timeout serialize
// concurrent submissions at the storage layer.
type Database struct {
	db *sql.DB
}

// NewDatabase opens (or creates) the SQLite database at cfg.DBPath.
func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infof("Database connected successfully at %s", cfg.DBPath)

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// EnsureComplaintsTable creates the complaints table if it doesn't exist
func (d *Database) EnsureComplaintsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS complaints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			full_name TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			language TEXT NOT NULL,
			description TEXT NOT NULL,
			normalized_desc TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			ward_zone TEXT NOT NULL DEFAULT '',
			image_path TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			category TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT 'Low',
			score REAL NOT NULL DEFAULT 0,
			ai_label TEXT NOT NULL DEFAULT '',
			ai_confidence REAL NOT NULL DEFAULT 0
		)
	`

	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create complaints table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS complaints_status_index ON complaints(status)`,
		`CREATE INDEX IF NOT EXISTS complaints_ward_zone_index ON complaints(ward_zone)`,
	}
	for _, index := range indexes {
		if _, err := d.db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Info("Complaints table ensured")
	return nil
}

// InsertPending creates a complaint row with status "pending" and returns the
// assigned id. Called before any external service call so a record exists
// even if classification or triage fails.
func (d *Database) InsertPending(ctx context.Context, c *models.Complaint) (int64, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO complaints (
			created_at, full_name, phone_number, language,
			description, location, ward_zone, image_path, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), c.FullName, c.PhoneNumber, c.Language,
		c.Description, c.Location, c.WardZone, c.ImagePath, models.StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pending complaint: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// UpdateVerified finalizes a pending complaint with the triage outputs. The
// status guard keeps transitions monotonic: a row that already left
// "pending" is never rewritten.
func (d *Database) UpdateVerified(ctx context.Context, id int64, triage models.TriageResult, cls models.ClassificationResult) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE complaints
		SET status = ?, category = ?, priority = ?, score = ?,
		    normalized_desc = ?, ai_label = ?, ai_confidence = ?
		WHERE id = ? AND status = ?`,
		models.StatusVerified, triage.Category, triage.Priority, triage.Score,
		triage.NormalizedDesc, cls.Label, cls.Confidence, id, models.StatusPending,
	)
	return validateUpdate(result, err, id)
}

// UpdateRejected marks a pending complaint as rejected by the classifier.
// Category and priority are left at their defaults; they are only meaningful
// for verified complaints.
func (d *Database) UpdateRejected(ctx context.Context, id int64, cls models.ClassificationResult) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE complaints
		SET status = ?, ai_label = ?, ai_confidence = ?
		WHERE id = ? AND status = ?`,
		models.StatusRejected, cls.Label, cls.Confidence, id, models.StatusPending,
	)
	return validateUpdate(result, err, id)
}

// MarkPendingReview flags a complaint whose processing failed after the
// pending row was inserted, so an operator can pick it up.
func (d *Database) MarkPendingReview(ctx context.Context, id int64) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE complaints
		SET status = ?
		WHERE id = ? AND status = ?`,
		models.StatusPendingReview, id, models.StatusPending,
	)
	return validateUpdate(result, err, id)
}

// GetComplaint returns the complaint with the given id, or nil if it
// doesn't exist.
func (d *Database) GetComplaint(ctx context.Context, id int64) (*models.Complaint, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, created_at, full_name, phone_number, language,
		       description, normalized_desc, location, ward_zone, image_path,
		       status, category, priority, score, ai_label, ai_confidence
		FROM complaints
		WHERE id = ?`, id)

	c, err := scanComplaint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint %d: %w", id, err)
	}
	return c, nil
}

// ListComplaints returns complaints filtered by status and/or ward zone,
// newest first. Empty filter values match everything.
func (d *Database) ListComplaints(ctx context.Context, status, wardZone string, limit int) ([]models.Complaint, error) {
	query := `
		SELECT id, created_at, full_name, phone_number, language,
		       description, normalized_desc, location, ward_zone, image_path,
		       status, category, priority, score, ai_label, ai_confidence
		FROM complaints
		WHERE (? = '' OR status = ?) AND (? = '' OR ward_zone = ?)
		ORDER BY id DESC
		LIMIT ?`

	rows, err := d.db.QueryContext(ctx, query, status, status, wardZone, wardZone, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	complaints := make([]models.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint row: %w", err)
		}
		complaints = append(complaints, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate complaint rows: %w", err)
	}

	return complaints, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComplaint(row rowScanner) (*models.Complaint, error) {
	var c models.Complaint
	var createdAt string

	err := row.Scan(
		&c.ID, &createdAt, &c.FullName, &c.PhoneNumber, &c.Language,
		&c.Description, &c.NormalizedDesc, &c.Location, &c.WardZone, &c.ImagePath,
		&c.Status, &c.Category, &c.Priority, &c.Score, &c.AILabel, &c.AIConfidence,
	)
	if err != nil {
		return nil, err
	}

	if ts, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		c.CreatedAt = ts
	}

	return &c, nil
}

func validateUpdate(result sql.Result, err error, id int64) error {
	if err != nil {
		return fmt.Errorf("failed to update complaint %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for complaint %d: %w", id, err)
	}
	if rows != 1 {
		return fmt.Errorf("complaint %d not found or not pending", id)
	}
	return nil
}
