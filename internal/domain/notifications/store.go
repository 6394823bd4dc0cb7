package notifications

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, n Notification) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO notifications (profile_id, type, title, message, entity_type, entity_id)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, n.ProfileID, n.Type, n.Title, n.Message, n.EntityType, n.EntityID).Scan(&id)
	return id, err
}

func (s *Store) ProfileEmail(ctx context.Context, profileID string) (string, error) {
	var email string
	if err := s.DB.QueryRow(ctx, "SELECT email FROM profiles WHERE id = $1 AND status = 'active'", profileID).Scan(&email); err != nil {
		return "", err
	}
	return email, nil
}

func (s *Store) List(ctx context.Context, profileID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, profile_id, type, title, message, entity_type, entity_id, read_at, created_at
    FROM notifications
    WHERE profile_id = $1 AND (NOT $2 OR read_at IS NULL)
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, profileID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.ProfileID, &n.Type, &n.Title, &n.Message, &n.EntityType, &n.EntityID, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, profileID string, unreadOnly bool) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications
    WHERE profile_id = $1 AND (NOT $2 OR read_at IS NULL)
  `, profileID, unreadOnly).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, profileID, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, now())
    WHERE profile_id = $1 AND id = $2
  `, profileID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, profileID string) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE profile_id = $1 AND read_at IS NULL
  `, profileID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) PendingHoursCount(ctx context.Context) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM working_hours WHERE status = 'pending'").Scan(&total)
	return total, err
}

func (s *Store) ApproverIDs(ctx context.Context, permission string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id
    FROM profiles p
    JOIN role_permissions rp ON rp.role = p.role
    WHERE rp.permission = $1 AND p.status = 'active'
    ORDER BY p.id
  `, permission)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
