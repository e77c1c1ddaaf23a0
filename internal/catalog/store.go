package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"steeple/internal/config"
)

// Store manages record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
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
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the catalog database location.
func (s *Store) Path() string {
	return s.path
}

// NewRecord carries the fields the reconciler supplies when registering an
// inventory item.
type NewRecord struct {
	Title       string
	Description string
	Tags        string
	Category    string
	Privacy     string
	SourceLink  string
	SizeBytes   int64
}

// Create inserts a new pending record for an inventory item.
func (s *Store) Create(ctx context.Context, nr NewRecord) (*Record, error) {
	title := strings.TrimSpace(nr.Title)
	if title == "" {
		return nil, errors.New("record title is required")
	}
	link := strings.TrimSpace(nr.SourceLink)
	if link == "" {
		return nil, errors.New("record source link is required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO video_records (
            title, normalized_title, description, tags, category, privacy,
            source_link, status, size_bytes, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		title,
		NormalizeTitle(title),
		nullableString(nr.Description),
		nullableString(nr.Tags),
		nullableString(nr.Category),
		nullableString(nr.Privacy),
		link,
		StatusPending,
		nr.SizeBytes,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a record by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM video_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// Update persists changes to an existing record.
func (s *Store) Update(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	record.UpdatedAt = time.Now().UTC()
	record.NormalizedTitle = NormalizeTitle(record.Title)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE video_records
         SET title = ?, normalized_title = ?, description = ?, tags = ?,
             category = ?, privacy = ?, source_link = ?, status = ?,
             attempts = ?, last_error = ?, error_at = ?, published_url = ?,
             published_id = ?, upload_duration_secs = ?, size_bytes = ?,
             claimed_at = ?, updated_at = ?
         WHERE id = ?`,
		record.Title,
		record.NormalizedTitle,
		nullableString(record.Description),
		nullableString(record.Tags),
		nullableString(record.Category),
		nullableString(record.Privacy),
		record.SourceLink,
		record.Status,
		record.Attempts,
		nullableString(record.LastError),
		nullableTime(record.ErrorAt),
		nullableString(record.PublishedURL),
		nullableString(record.PublishedID),
		record.UploadDurationSecs,
		record.SizeBytes,
		nullableTime(record.ClaimedAt),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

// List returns records filtered by status set (or all records when no status
// is provided), ordered by normalized title for reproducible output.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Record, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + recordColumns + ` FROM video_records`
	orderClause := ` ORDER BY normalized_title, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// NextPending returns the first pending record by ascending normalized title,
// or nil when none is eligible. The read has no side effect; claiming happens
// separately via ClaimPending.
func (s *Store) NextPending(ctx context.Context) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM video_records WHERE status = ? ORDER BY normalized_title, id LIMIT 1`,
		StatusPending,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next pending record: %w", err)
	}
	return record, nil
}

// ClaimPending atomically transitions a record from Pending to Processing.
// The conditional update makes concurrent runs safe: whichever run loses the
// race observes zero affected rows and receives nil.
func (s *Store) ClaimPending(ctx context.Context, id int64) (*Record, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE video_records
         SET status = ?, claimed_at = ?, last_error = NULL, error_at = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusProcessing,
		now,
		now,
		id,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("claim record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

// ExistingKeys returns the normalized-title and canonical-link lookup sets
// the reconciler diffs the inventory against. All statuses count: an Error
// record still represents its source item.
func (s *Store) ExistingKeys(ctx context.Context) (map[string]struct{}, map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT normalized_title, source_link FROM video_records`)
	if err != nil {
		return nil, nil, fmt.Errorf("query record keys: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]struct{})
	links := make(map[string]struct{})
	for rows.Next() {
		var title, link string
		if err := rows.Scan(&title, &link); err != nil {
			return nil, nil, err
		}
		titles[title] = struct{}{}
		links[link] = struct{}{}
	}
	return titles, links, rows.Err()
}

const recordColumns = "id, title, normalized_title, description, tags, category, privacy, source_link, status, attempts, last_error, error_at, published_url, published_id, upload_duration_secs, size_bytes, claimed_at, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		title        string
		normalized   string
		description  sql.NullString
		tags         sql.NullString
		category     sql.NullString
		privacy      sql.NullString
		sourceLink   string
		statusStr    string
		attempts     int
		lastError    sql.NullString
		errorAtRaw   sql.NullString
		publishedURL sql.NullString
		publishedID  sql.NullString
		uploadSecs   sql.NullFloat64
		sizeBytes    sql.NullInt64
		claimedAtRaw sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&normalized,
		&description,
		&tags,
		&category,
		&privacy,
		&sourceLink,
		&statusStr,
		&attempts,
		&lastError,
		&errorAtRaw,
		&publishedURL,
		&publishedID,
		&uploadSecs,
		&sizeBytes,
		&claimedAtRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:                 id,
		Title:              title,
		NormalizedTitle:    normalized,
		Description:        description.String,
		Tags:               tags.String,
		Category:           category.String,
		Privacy:            privacy.String,
		SourceLink:         sourceLink,
		Status:             Status(statusStr),
		Attempts:           attempts,
		LastError:          lastError.String,
		PublishedURL:       publishedURL.String,
		PublishedID:        publishedID.String,
		UploadDurationSecs: uploadSecs.Float64,
		SizeBytes:          sizeBytes.Int64,
	}

	if errorAtRaw.Valid {
		if at, err := parseTimeString(errorAtRaw.String); err == nil {
			record.ErrorAt = &at
		}
	}
	if claimedAtRaw.Valid {
		if at, err := parseTimeString(claimedAtRaw.String); err == nil {
			record.ClaimedAt = &at
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
