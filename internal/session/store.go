package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gophora/portal/internal/db"
	"github.com/gophora/portal/internal/models"
)

// Well-known session value keys. These are the portal's replacement for the
// browser local-storage keys of the old single-page client.
const (
	KeyToken                      = "token"
	KeyRole                       = "role"
	KeyAppliedIDs                 = "appliedIds"
	KeyApplicationsSentDelta      = "applicationsSentDelta"
	KeyLastVisitedSeekerDashboard = "lastVisitedSeekerDashboard"
)

// ErrNoSession is returned when a session id has no backing row.
var ErrNoSession = errors.New("session not found")

// Store persists per-browser session values in SQLite. The browser cookie
// carries only the opaque session id; every value lives in a
// (sid, key, value) row so independent requests on the same session share
// one serialized view of the state.
type Store struct {
	conn   *db.DB
	logger *slog.Logger
}

func NewStore(conn *db.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &Store{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// Create inserts a new session row and returns its id.
func (s *Store) Create(ctx context.Context) (string, error) {
	sid := uuid.NewString()
	if _, err := s.conn.Exec(ctx, `INSERT INTO sessions (sid, created) VALUES (?, ?)`, sid, now()); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sid, nil
}

// Exists reports whether sid has a backing session row.
func (s *Store) Exists(ctx context.Context, sid string) (bool, error) {
	var count int
	row := s.conn.QueryRow(ctx, `SELECT COUNT(1) FROM sessions WHERE sid = ?`, sid)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return count > 0, nil
}

// Read returns the value stored under key. Absent keys are not an error:
// ok is false and the value is empty, matching the logged-out reading of
// missing state.
func (s *Store) Read(ctx context.Context, sid, key string) (string, bool, error) {
	var value string
	row := s.conn.QueryRow(ctx, `SELECT value FROM session_values WHERE sid = ? AND key = ?`, sid, key)
	switch err := row.Scan(&value); {
	case err == nil:
		return value, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("read session value %s: %w", key, err)
	}
}

// Write upserts a value under key.
func (s *Store) Write(ctx context.Context, sid, key, value string) error {
	_, err := s.conn.Exec(ctx,
		`INSERT INTO session_values (sid, key, value, updated) VALUES (?, ?, ?, ?)
		 ON CONFLICT (sid, key) DO UPDATE SET value = excluded.value, updated = excluded.updated`,
		sid, key, value, now())
	if err != nil {
		return fmt.Errorf("write session value %s: %w", key, err)
	}
	return nil
}

// ConsumeOnce reads and removes the value under key in a single statement,
// so a value written once can be observed at most once even when two
// requests race on the same session.
func (s *Store) ConsumeOnce(ctx context.Context, sid, key string) (string, bool, error) {
	var value string
	row := s.conn.QueryRow(ctx, `DELETE FROM session_values WHERE sid = ? AND key = ? RETURNING value`, sid, key)
	switch err := row.Scan(&value); {
	case err == nil:
		return value, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("consume session value %s: %w", key, err)
	}
}

// Increment adds one to an integer-valued key, creating it at 1 when
// absent. Used for the applications-sent delta counter.
func (s *Store) Increment(ctx context.Context, sid, key string) error {
	_, err := s.conn.Exec(ctx,
		`INSERT INTO session_values (sid, key, value, updated) VALUES (?, ?, '1', ?)
		 ON CONFLICT (sid, key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT), updated = excluded.updated`,
		sid, key, now())
	if err != nil {
		return fmt.Errorf("increment session value %s: %w", key, err)
	}
	return nil
}

// Session assembles the auth view of a session. A stored role with no
// token reads as logged out.
func (s *Store) Session(ctx context.Context, sid string) (models.Session, error) {
	token, _, err := s.Read(ctx, sid, KeyToken)
	if err != nil {
		return models.Session{}, err
	}
	if token == "" {
		return models.Session{}, nil
	}
	role, _, err := s.Read(ctx, sid, KeyRole)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{Token: token, Role: models.Role(role)}, nil
}

// SetLogin records a successful login. The token is an opaque string; the
// portal never inspects it.
func (s *Store) SetLogin(ctx context.Context, sid, token string, role models.Role) error {
	if err := s.Write(ctx, sid, KeyToken, token); err != nil {
		return err
	}
	return s.Write(ctx, sid, KeyRole, string(role))
}

// Clear removes every value held by the session, leaving the session row
// itself so the cookie stays usable for a later login.
func (s *Store) Clear(ctx context.Context, sid string) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM session_values WHERE sid = ?`, sid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// AppliedIDs returns the set of opportunity ids this session has applied
// to, as recorded at apply time.
func (s *Store) AppliedIDs(ctx context.Context, sid string) (map[int64]bool, error) {
	raw, ok, err := s.Read(ctx, sid, KeyAppliedIDs)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]bool)
	if !ok {
		return ids, nil
	}
	var list []int64
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		// a corrupt entry reads as empty rather than breaking the screen
		s.logger.Warn("corrupt applied id list, resetting", slog.String("sid", sid), slog.Any("err", err))
		return ids, nil
	}
	for _, id := range list {
		ids[id] = true
	}
	return ids, nil
}

// AddAppliedID appends id to the applied set, ignoring duplicates.
func (s *Store) AddAppliedID(ctx context.Context, sid string, id int64) error {
	ids, err := s.AppliedIDs(ctx, sid)
	if err != nil {
		return err
	}
	if ids[id] {
		return nil
	}
	list := make([]int64, 0, len(ids)+1)
	for v := range ids {
		list = append(list, v)
	}
	list = append(list, id)
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode applied ids: %w", err)
	}
	return s.Write(ctx, sid, KeyAppliedIDs, string(b))
}
