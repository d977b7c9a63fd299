// Package auth issues and verifies API tokens for the portal's HTTP API.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aibandobast/bandobast/internal/db"
)

// Scope limits what a token may do.
type Scope string

const (
	// ScopeRead allows safe (GET/HEAD) requests only.
	ScopeRead Scope = "read"
	// ScopeAdmin allows every request.
	ScopeAdmin Scope = "admin"
)

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeRead, ScopeAdmin:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown token scope %q (want read or admin)", s)
	}
}

// tokenPrefix marks plaintext tokens so they are recognisable in configs.
const tokenPrefix = "bdb_"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotFound     = errors.New("token not found")
)

// Token is the stored metadata of an API token. The plaintext is never kept.
type Token struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Scope     Scope      `json:"scope"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// Allows reports whether the token may perform a request with method.
func (t *Token) Allows(method string) bool {
	if t.Scope == ScopeAdmin {
		return true
	}
	return method == "GET" || method == "HEAD" || method == "OPTIONS"
}

// Store persists API tokens as SHA-256 hashes.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// HashToken returns the hex SHA-256 of a plaintext token.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Create issues a token and returns its plaintext, which is shown once.
// A zero ttl never expires.
func (s *Store) Create(ctx context.Context, name string, scope Scope, ttl time.Duration) (string, *Token, error) {
	if name == "" {
		return "", nil, errors.New("token name is required")
	}
	if _, err := ParseScope(string(scope)); err != nil {
		return "", nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	plaintext := tokenPrefix + hex.EncodeToString(raw)

	tok := &Token{
		ID:        uuid.New().String(),
		Name:      name,
		Scope:     scope,
		CreatedAt: time.Now().UTC(),
	}
	var expires sql.NullTime
	if ttl > 0 {
		exp := tok.CreatedAt.Add(ttl)
		tok.ExpiresAt = &exp
		expires = sql.NullTime{Time: exp, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_tokens (id, name, token_hash, scope, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tok.ID, tok.Name, HashToken(plaintext), string(tok.Scope), tok.CreatedAt, expires,
	)
	if err != nil {
		return "", nil, fmt.Errorf("inserting token: %w", err)
	}
	return plaintext, tok, nil
}

// Verify resolves a plaintext token and records its use.
func (s *Store) Verify(ctx context.Context, plaintext string) (*Token, error) {
	if plaintext == "" {
		return nil, ErrInvalidToken
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, scope, created_at, expires_at, last_used
		FROM api_tokens WHERE token_hash = ?`, HashToken(plaintext))

	tok, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("looking up token: %w", err)
	}

	now := time.Now().UTC()
	if tok.ExpiresAt != nil && !now.Before(*tok.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE api_tokens SET last_used = ? WHERE id = ?`, now, tok.ID); err != nil {
		return nil, fmt.Errorf("recording token use: %w", err)
	}
	tok.LastUsed = &now
	return tok, nil
}

// List returns every token, newest first.
func (s *Store) List(ctx context.Context) ([]Token, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, scope, created_at, expires_at, last_used
		FROM api_tokens ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	defer rows.Close()

	tokens := []Token{}
	for rows.Next() {
		tok, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		tokens = append(tokens, *tok)
	}
	return tokens, rows.Err()
}

// Revoke deletes the token with the given id.
func (s *Store) Revoke(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanToken(sc scanner) (*Token, error) {
	var (
		tok               Token
		scope             string
		expires, lastUsed sql.NullTime
	)
	if err := sc.Scan(&tok.ID, &tok.Name, &scope, &tok.CreatedAt, &expires, &lastUsed); err != nil {
		return nil, err
	}
	tok.Scope = Scope(scope)
	if expires.Valid {
		t := expires.Time
		tok.ExpiresAt = &t
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		tok.LastUsed = &t
	}
	return &tok, nil
}
