// Package sqldb stores birthdays and admin users through database/sql.
// The driver is chosen from the database URL: local SQLite, remote libSQL
// (Turso) or Postgres.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"                    // Postgres driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

const timeLayout = time.RFC3339Nano

type Repository struct {
	db       *sql.DB
	postgres bool
	now      func() time.Time
	newID    func() string
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides how new record ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

// DriverName picks the database/sql driver for dbURL.
func DriverName(dbURL string) string {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return "pgx"
	case strings.Contains(dbURL, "libsql://"), strings.Contains(dbURL, "wss://"),
		strings.HasPrefix(dbURL, "https://") && strings.Contains(dbURL, ".turso.io"):
		return "libsql"
	default:
		return "sqlite"
	}
}

// NewRepository opens the database once, checks it is reachable and applies
// the schema. Callers own the returned handle and must Close it.
func NewRepository(ctx context.Context, dbURL string, opts ...Option) (*Repository, error) {
	driverName := DriverName(dbURL)

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, domain.Unavailable("open "+driverName, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, domain.Unavailable("ping "+driverName, err)
	}

	r := &Repository{
		db:       db,
		postgres: driverName == "pgx",
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, domain.Unavailable("migrate", err)
	}

	return r, nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	// One statement per Exec: not every driver accepts batches.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS birthdays (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			birth_date TEXT NOT NULL,
			link TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_birthdays_name ON birthdays(name)`,
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (r *Repository) rebind(query string) string {
	if !r.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.Birthday, error) {
	query := `SELECT id, name, birth_date, link, created_at FROM birthdays ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.Unavailable("list birthdays", err)
	}
	defer rows.Close()

	birthdays := []domain.Birthday{}
	for rows.Next() {
		b, err := scanBirthday(rows)
		if err != nil {
			return nil, domain.Unavailable("scan birthday", err)
		}
		birthdays = append(birthdays, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list birthdays", err)
	}
	return birthdays, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Birthday, error) {
	query := r.rebind(`SELECT id, name, birth_date, link, created_at FROM birthdays WHERE id = ?`)

	b, err := scanBirthday(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Unavailable("get birthday", err)
	}
	return &b, nil
}

func (r *Repository) Create(ctx context.Context, birthday *domain.Birthday) error {
	query := r.rebind(`INSERT INTO birthdays (id, name, birth_date, link, created_at) VALUES (?, ?, ?, ?, ?)`)

	id := r.newID()
	createdAt := r.now().UTC()

	_, err := r.db.ExecContext(ctx, query, id, birthday.Name, birthday.Date, birthday.Link, createdAt.Format(timeLayout))
	if err != nil {
		return domain.Unavailable("insert birthday", err)
	}

	birthday.ID = id
	birthday.CreatedAt = createdAt
	return nil
}

func (r *Repository) Update(ctx context.Context, id string, fields domain.BirthdayFields) (*domain.Birthday, error) {
	query := r.rebind(`UPDATE birthdays SET name = ?, birth_date = ?, link = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, fields.Name, fields.Date, fields.Link, id)
	if err != nil {
		return nil, domain.Unavailable("update birthday", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	query := r.rebind(`DELETE FROM birthdays WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return domain.Unavailable("delete birthday", err)
	}
	return requireAffected(res)
}

// --- Users ---

func (r *Repository) GetUser(ctx context.Context, username string) (*domain.User, error) {
	query := r.rebind(`SELECT username, password_hash, created_at FROM users WHERE username = ?`)

	var u domain.User
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Unavailable("get user", err)
	}
	u.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &u, nil
}

func (r *Repository) SaveUser(ctx context.Context, user *domain.User) error {
	query := r.rebind(`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash`)

	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.CreatedAt.Format(timeLayout))
	if err != nil {
		return domain.Unavailable("save user", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBirthday(s scanner) (domain.Birthday, error) {
	var b domain.Birthday
	var createdAt string
	if err := s.Scan(&b.ID, &b.Name, &b.Date, &b.Link, &createdAt); err != nil {
		return domain.Birthday{}, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Birthday{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	b.CreatedAt = t
	return b, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Unavailable("rows affected", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ensure interface compliance
var (
	_ ports.BirthdayRepository = (*Repository)(nil)
	_ ports.UserRepository     = (*Repository)(nil)
)
