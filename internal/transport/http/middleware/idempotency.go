package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	IdempotencyHeader     = "Idempotency-Key"
	maxIdempotencyKeyLen  = 128
	idempotencyReplayFlag = "Idempotent-Replayed"
)

var (
	ErrIdempotencyConflict   = errors.New("idempotency key was used with a different request")
	ErrIdempotencyKeyInvalid = errors.New("idempotency key must be 1-128 printable characters")
)

// IdempotencyChecker replays stored responses for repeated keys. Keys are
// scoped to the caller and the endpoint.
type IdempotencyChecker interface {
	Check(ctx context.Context, profileID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, profileID, endpoint, key, requestHash string, response json.RawMessage) error
}

// IdempotencyKey returns the request's key, or "" when none was sent.
func IdempotencyKey(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if key == "" {
		return "", nil
	}
	if len(key) > maxIdempotencyKeyLen {
		return "", ErrIdempotencyKeyInvalid
	}
	for _, c := range key {
		if c < 0x21 || c > 0x7e {
			return "", ErrIdempotencyKeyInvalid
		}
	}
	return key, nil
}

// MarkReplayed flags a response served from the idempotency store.
func MarkReplayed(w http.ResponseWriter) {
	w.Header().Set(idempotencyReplayFlag, "true")
}

// RequestHash fingerprints the parts of a request that must match on replay.
func RequestHash(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IdempotencyStore keeps settled responses in idempotency_keys.
type IdempotencyStore struct {
	db *pgxpool.Pool
}

func NewIdempotencyStore(db *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

func (s *IdempotencyStore) Check(ctx context.Context, profileID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, nil
	}
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE profile_id = $1 AND endpoint = $2 AND key = $3
  `, profileID, endpoint, key).Scan(&storedHash, &stored)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case storedHash != requestHash:
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

// Save records the first response for key. A concurrent request that already
// stored a different body under the same key wins.
func (s *IdempotencyStore) Save(ctx context.Context, profileID, endpoint, key, requestHash string, response json.RawMessage) error {
	if s == nil || s.db == nil {
		return nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (profile_id, endpoint, key, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (profile_id, key, endpoint) DO NOTHING
  `, profileID, endpoint, key, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		_, _, err := s.Check(ctx, profileID, endpoint, key, requestHash)
		return err
	}
	return nil
}

// Purge drops keys older than retention.
func (s *IdempotencyStore) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx, "DELETE FROM idempotency_keys WHERE created_at < $1", time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
