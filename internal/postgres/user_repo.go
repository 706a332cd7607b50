package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository stores accounts and their persisted presence state.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, queryCreateUser, username, passwordHash)

	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsOnline, &u.LastSeen, &u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, queryGetUserByUsername, username)

	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsOnline, &u.LastSeen, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListExcept returns every user other than the given one, for the contact
// directory.
func (r *UserRepository) ListExcept(ctx context.Context, username string) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, queryListUsersExcept, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsOnline, &u.LastSeen, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) SetOnline(ctx context.Context, identity string) error {
	_, err := r.db.Exec(ctx, querySetOnline, identity)
	return err
}

func (r *UserRepository) SetOffline(ctx context.Context, identity string, lastSeen time.Time) error {
	_, err := r.db.Exec(ctx, querySetOffline, identity, lastSeen)
	return err
}

// Statuses reports persisted presence for the requested identities.
// Unknown identities are simply absent from the result; callers treat them
// as offline with no last-seen.
func (r *UserRepository) Statuses(ctx context.Context, identities []string) (map[string]domain.Presence, error) {
	rows, err := r.db.Query(ctx, queryStatuses, identities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.Presence, len(identities))
	for rows.Next() {
		var p domain.Presence
		if err := rows.Scan(&p.Identity, &p.IsOnline, &p.LastSeen); err != nil {
			return nil, err
		}
		out[p.Identity] = p
	}
	return out, rows.Err()
}
