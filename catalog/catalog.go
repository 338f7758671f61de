package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lookup matches no cataloged slide.
var ErrNotFound = errors.New("catalog: slide not found")

// SlideRecord is one cataloged slide file.
type SlideRecord struct {
	ID         int64     // Auto-incremented primary key
	ScanID     string    // Identifier grouping one directory scan
	Path       string    // Absolute file path, unique per catalog
	Vendor     string    // Scanner vendor reported by OpenSlide
	Width      int64     // Level 0 width in pixels
	Height     int64     // Level 0 height in pixels
	LevelCount int32     // Number of pyramid levels
	MPPX       float64   // Microns per pixel, X (0 when unknown)
	MPPY       float64   // Microns per pixel, Y (0 when unknown)
	CreatedAt  time.Time // When the record was written
}

// Catalog is a handle to one catalog database.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if necessary) the catalog database at path and
// applies pending schema migrations.
func Open(path string) (*Catalog, error) {
	db, err := newConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record upserts a slide record keyed by path and returns its row ID.
// Re-scanning a file updates its geometry and scan ID in place.
func (c *Catalog) Record(ctx context.Context, rec SlideRecord) (int64, error) {
	if rec.Path == "" {
		return 0, fmt.Errorf("catalog: record requires a path")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	// RETURNING resolves the row ID in the same statement for both the
	// insert and the conflict-update arm; LastInsertId is not meaningful on
	// conflict-update.
	var id int64
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO slides (scan_id, path, vendor, width, height, level_count, mpp_x, mpp_y, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			scan_id     = excluded.scan_id,
			vendor      = excluded.vendor,
			width       = excluded.width,
			height      = excluded.height,
			level_count = excluded.level_count,
			mpp_x       = excluded.mpp_x,
			mpp_y       = excluded.mpp_y,
			created_at  = excluded.created_at
		RETURNING id`,
		rec.ScanID, rec.Path, rec.Vendor, rec.Width, rec.Height,
		rec.LevelCount, nullableFloat(rec.MPPX), nullableFloat(rec.MPPY),
		rec.CreatedAt.Unix()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("catalog: record %s: %w", rec.Path, err)
	}
	return id, nil
}

// FindByPath returns the cataloged record for a slide file path, or
// ErrNotFound.
func (c *Catalog) FindByPath(ctx context.Context, path string) (*SlideRecord, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, scan_id, path, vendor, width, height, level_count, mpp_x, mpp_y, created_at
		FROM slides WHERE path = ?`, path)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: find %s: %w", path, err)
	}
	return rec, nil
}

// List returns all cataloged slides ordered by path.
func (c *Catalog) List(ctx context.Context) ([]SlideRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, scan_id, path, vendor, width, height, level_count, mpp_x, mpp_y, created_at
		FROM slides ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var records []SlideRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: list: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return records, nil
}

// ListByVendor returns cataloged slides for one vendor, ordered by path.
func (c *Catalog) ListByVendor(ctx context.Context, vendor string) ([]SlideRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, scan_id, path, vendor, width, height, level_count, mpp_x, mpp_y, created_at
		FROM slides WHERE vendor = ? ORDER BY path`, vendor)
	if err != nil {
		return nil, fmt.Errorf("catalog: list vendor %s: %w", vendor, err)
	}
	defer rows.Close()

	var records []SlideRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: list vendor %s: %w", vendor, err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*SlideRecord, error) {
	var (
		rec       SlideRecord
		mppX      sql.NullFloat64
		mppY      sql.NullFloat64
		createdAt int64
	)
	err := row.Scan(&rec.ID, &rec.ScanID, &rec.Path, &rec.Vendor,
		&rec.Width, &rec.Height, &rec.LevelCount, &mppX, &mppY, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.MPPX = mppX.Float64
	rec.MPPY = mppY.Float64
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &rec, nil
}

// nullableFloat stores 0 as NULL so unknown resolutions stay distinguishable.
func nullableFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}
