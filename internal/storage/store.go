package storage

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// AnalysisCacheEntry is a cached product idea for a prompt and style.
type AnalysisCacheEntry struct {
	Product     string
	ImagePrompt string
	Title       string
	Description string
}

// AllowedUser is a Telegram user allowed to use the bot.
type AllowedUser struct {
	TelegramID int64
	AddedAt    time.Time
	AddedBy    int64
}

// SQLiteStore persists products, orders, the analysis cache and the bot
// allowlist. Order recipients are encrypted at rest.
type SQLiteStore struct {
	db            *sql.DB
	encryptionKey []byte
	mu            sync.RWMutex
}

// NewSQLiteStore opens (or creates) the database at dbPath. The encryption
// key is derived from passphrase with a salt kept in the database itself, so
// the same passphrase must be used for the lifetime of the file.
func NewSQLiteStore(dbPath, passphrase string) (*SQLiteStore, error) {
	if passphrase == "" {
		return nil, errors.New("encryption passphrase is required")
	}

	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	salt, err := store.loadSalt()
	if err != nil {
		db.Close()
		return nil, err
	}
	store.encryptionKey = DeriveKey(passphrase, salt)

	// Only the owner should read order PII
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", dbPath).Msg("failed to restrict database permissions")
	}

	return store, nil
}

var schema = []struct {
	table string
	query string
}{
	{"settings", `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`},
	{"products", `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		image_url TEXT NOT NULL,
		mockup_url TEXT,
		price_cents INTEGER NOT NULL,
		currency TEXT NOT NULL,
		category_id INTEGER NOT NULL,
		match_score INTEGER NOT NULL,
		match_source TEXT NOT NULL,
		printful_product_id INTEGER NOT NULL,
		printful_variant_id INTEGER NOT NULL,
		sync_product_id INTEGER,
		prompt TEXT NOT NULL,
		style TEXT NOT NULL,
		created_by TEXT,
		created_at DATETIME NOT NULL
	);`},
	{"products_category_idx", `
	CREATE INDEX IF NOT EXISTS products_category_idx ON products (category_id, created_at);`},
	{"analysis_cache", `
	CREATE TABLE IF NOT EXISTS analysis_cache (
		request_hash TEXT PRIMARY KEY,
		product TEXT NOT NULL,
		image_prompt TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`},
	{"orders", `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		printful_order_id INTEGER,
		status TEXT NOT NULL,
		shipping TEXT NOT NULL,
		currency TEXT NOT NULL,
		encrypted_recipient TEXT NOT NULL,
		items TEXT NOT NULL,
		subtotal_cents INTEGER NOT NULL,
		discount_cents INTEGER NOT NULL,
		shipping_cents INTEGER NOT NULL,
		tax_cents INTEGER NOT NULL,
		total_cents INTEGER NOT NULL,
		created_by TEXT,
		created_at DATETIME NOT NULL
	);`},
	{"allowed_users", `
	CREATE TABLE IF NOT EXISTS allowed_users (
		telegram_id INTEGER PRIMARY KEY,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		added_by INTEGER
	);`},
}

func (s *SQLiteStore) init() error {
	for _, t := range schema {
		if _, err := s.db.Exec(t.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", t.table, err)
		}
	}
	return nil
}

// loadSalt returns the key derivation salt, creating it on first use.
func (s *SQLiteStore) loadSalt() ([]byte, error) {
	var encoded string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = 'kdf_salt'").Scan(&encoded)
	if err == nil {
		return base64.StdEncoding.DecodeString(encoded)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query salt: %w", err)
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	// INSERT OR IGNORE so a concurrent first start keeps whichever salt won
	if _, err := s.db.Exec("INSERT OR IGNORE INTO settings (key, value) VALUES ('kdf_salt', ?)", base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("failed to store salt: %w", err)
	}
	return s.loadSalt()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

// GetAnalysisCache retrieves a cached product idea.
// Returns nil, nil if not found.
func (s *SQLiteStore) GetAnalysisCache(hash string) (*AnalysisCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entry AnalysisCacheEntry
	err := s.db.QueryRow(
		"SELECT product, image_prompt, title, description FROM analysis_cache WHERE request_hash = ?",
		hash,
	).Scan(&entry.Product, &entry.ImagePrompt, &entry.Title, &entry.Description)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis cache: %w", err)
	}

	return &entry, nil
}

// SetAnalysisCache stores a product idea in the cache.
func (s *SQLiteStore) SetAnalysisCache(hash string, entry *AnalysisCacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO analysis_cache (request_hash, product, image_prompt, title, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(request_hash) DO UPDATE SET
			product = excluded.product,
			image_prompt = excluded.image_prompt,
			title = excluded.title,
			description = excluded.description
	`, hash, entry.Product, entry.ImagePrompt, entry.Title, entry.Description)

	if err != nil {
		return fmt.Errorf("failed to save analysis cache: %w", err)
	}

	return nil
}

// IsUserAllowed checks if a user is in the allowlist.
func (s *SQLiteStore) IsUserAllowed(telegramID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRow("SELECT 1 FROM allowed_users WHERE telegram_id = ?", telegramID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check allowed user: %w", err)
	}
	return true, nil
}

// AddAllowedUser adds a user to the allowlist.
func (s *SQLiteStore) AddAllowedUser(telegramID, addedBy int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO allowed_users (telegram_id, added_by)
		VALUES (?, ?)
		ON CONFLICT(telegram_id) DO NOTHING
	`, telegramID, addedBy)
	if err != nil {
		return fmt.Errorf("failed to add allowed user: %w", err)
	}
	return nil
}

// RemoveAllowedUser removes a user from the allowlist.
func (s *SQLiteStore) RemoveAllowedUser(telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM allowed_users WHERE telegram_id = ?", telegramID)
	if err != nil {
		return fmt.Errorf("failed to remove allowed user: %w", err)
	}
	return nil
}

// GetAllowedUsers returns all users in the allowlist, oldest first.
func (s *SQLiteStore) GetAllowedUsers() ([]AllowedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT telegram_id, added_at, added_by FROM allowed_users ORDER BY added_at, telegram_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query allowed users: %w", err)
	}
	defer rows.Close()

	var users []AllowedUser
	for rows.Next() {
		var u AllowedUser
		var addedBy sql.NullInt64
		if err := rows.Scan(&u.TelegramID, &u.AddedAt, &addedBy); err != nil {
			return nil, fmt.Errorf("failed to scan allowed user: %w", err)
		}
		u.AddedBy = addedBy.Int64
		users = append(users, u)
	}
	return users, rows.Err()
}
