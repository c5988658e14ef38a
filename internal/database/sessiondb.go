package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/workshopper/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "workshopper.db"

// ErrSessionNotFound is returned when a session ID does not exist.
var ErrSessionNotFound = errors.New("session not found")

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SessionDB provides SQLite-based storage for scrape sessions.
type SessionDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SessionDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the session database in dbDir.
func Open(dbDir string, opts Options) (*SessionDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SessionDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *SessionDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *SessionDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SessionDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user TEXT NOT NULL,
		kind TEXT NOT NULL,
		listing_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		item_count INTEGER NOT NULL DEFAULT 0,
		output_path TEXT,
		export_state TEXT NOT NULL,
		totals_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		airframe TEXT NOT NULL,
		visitors INTEGER NOT NULL,
		subscribers INTEGER NOT NULL,
		favorites INTEGER NOT NULL,
		awards INTEGER NOT NULL,
		comments INTEGER NOT NULL,
		file_size TEXT NOT NULL,
		uploaded TEXT NOT NULL,
		updated TEXT NOT NULL,
		changes INTEGER NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_session ON items(session_id);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SessionRecord is the stored summary of one session.
type SessionRecord struct {
	ID         int64
	User       string
	Kind       string
	ListingURL string
	StartedAt  time.Time
	FinishedAt time.Time
	Pages      int
	ItemCount  int
	OutputPath string
	Export     string
	Totals     model.Totals
}

// SaveSession stores session and all of its items in one transaction.
// It returns the new session ID.
func (sdb *SessionDB) SaveSession(ctx context.Context, session *model.Session) (id int64, err error) {
	items := session.Snapshot()

	totalsJSON, err := json.Marshal(session.Totals())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize totals: %w", err)
	}

	finished := session.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO sessions (user, kind, listing_url, started_at, finished_at, pages, item_count, output_path, export_state, totals_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.User,
		session.Identifier.Kind().String(),
		session.ListingURL,
		formatTime(session.StartedAt),
		formatTime(finished),
		session.PagesCompleted,
		len(items),
		session.OutputPath,
		session.Export.String(),
		string(totalsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save session: %w", err)
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO items (session_id, position, url, name, type, airframe, visitors, subscribers, favorites, awards, comments, file_size, uploaded, updated, changes, description)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err = stmt.ExecContext(ctx,
			id, i, item.URL, item.Name, item.Type, item.Airframe,
			item.Visitors, item.Subscribers, item.Favorites, item.Awards, item.Comments,
			item.FileSize, item.Uploaded, item.Updated, item.Changes, item.Description,
		); err != nil {
			return 0, fmt.Errorf("failed to save item %q: %w", item.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

// ListSessions returns stored sessions, newest first.
// An empty user lists every user's sessions.
func (sdb *SessionDB) ListSessions(ctx context.Context, user string) ([]SessionRecord, error) {
	return sdb.querySessions(ctx, user, -1)
}

// LatestSessions returns at most n sessions of user, newest first.
func (sdb *SessionDB) LatestSessions(ctx context.Context, user string, n int) ([]SessionRecord, error) {
	return sdb.querySessions(ctx, user, n)
}

const sessionColumns = `id, user, kind, listing_url, started_at, finished_at, pages, item_count, COALESCE(output_path, ''), export_state, totals_json`

// querySessions lists sessions filtered by user; limit < 0 means no limit.
func (sdb *SessionDB) querySessions(ctx context.Context, user string, limit int) ([]SessionRecord, error) {
	query := `
	SELECT ` + sessionColumns + `
	FROM sessions
	WHERE (? = '' OR user = ?)
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`

	rows, err := sdb.db.QueryContext(ctx, query, user, user, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	records := make([]SessionRecord, 0)
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetSession returns the stored summary of one session.
func (sdb *SessionDB) GetSession(ctx context.Context, sessionID int64) (SessionRecord, error) {
	row := sdb.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", sessionID)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
	}
	return rec, err
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (SessionRecord, error) {
	var (
		rec        SessionRecord
		started    string
		finished   string
		totalsJSON string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.User,
		&rec.Kind,
		&rec.ListingURL,
		&started,
		&finished,
		&rec.Pages,
		&rec.ItemCount,
		&rec.OutputPath,
		&rec.Export,
		&totalsJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRecord{}, err
		}
		return SessionRecord{}, fmt.Errorf("failed to scan session: %w", err)
	}

	rec.StartedAt = parseTimestamp(started)
	rec.FinishedAt = parseTimestamp(finished)
	if err := json.Unmarshal([]byte(totalsJSON), &rec.Totals); err != nil {
		return SessionRecord{}, fmt.Errorf("failed to decode totals of session %d: %w", rec.ID, err)
	}
	return rec, nil
}

// SessionItems returns the items of a stored session in scrape order.
func (sdb *SessionDB) SessionItems(ctx context.Context, sessionID int64) ([]model.WorkshopItem, error) {
	var exists int
	err := sdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE id = ?", sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session %d: %w", sessionID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
	}

	rows, err := sdb.db.QueryContext(ctx, `
	SELECT COALESCE(url, ''), name, type, airframe, visitors, subscribers, favorites, awards, comments, file_size, uploaded, updated, changes, description
	FROM items
	WHERE session_id = ?
	ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]model.WorkshopItem, 0)
	for rows.Next() {
		var item model.WorkshopItem
		if err := rows.Scan(
			&item.URL,
			&item.Name,
			&item.Type,
			&item.Airframe,
			&item.Visitors,
			&item.Subscribers,
			&item.Favorites,
			&item.Awards,
			&item.Comments,
			&item.FileSize,
			&item.Uploaded,
			&item.Updated,
			&item.Changes,
			&item.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListUsers returns every user with at least one stored session.
func (sdb *SessionDB) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, "SELECT DISTINCT user FROM sessions ORDER BY user")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteSession removes a session and its items.
func (sdb *SessionDB) DeleteSession(ctx context.Context, sessionID int64) error {
	result, err := sdb.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session %d: %w", sessionID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session %d: %w", sessionID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats lists the layouts a stored timestamp may use.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp tries each known layout and returns the zero time when none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
