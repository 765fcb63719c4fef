package repository

import (
	"context"
	"errors"
	"fmt"

	"employee-directory/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user: not found")
	// ErrUserExists is returned when the email is already registered.
	ErrUserExists = errors.New("user: already exists")
)

// UserStore holds the admin accounts used for session login.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
}

const (
	insertUser = `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3)
	RETURNING id::text, email, name, password_hash, created_at`

	selectUserByEmail = `SELECT id::text, email, name, password_hash, created_at FROM users WHERE email = $1`

	selectUserByID = `SELECT id::text, email, name, password_hash, created_at FROM users WHERE id = $1`
)

type UserRepository struct {
	db Database
}

func NewUserRepository(db Database) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, insertUser, name, email, passwordHash))
	if err != nil {
		if code, _ := pgError(err); code == pgUniqueViolation {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, selectUserByEmail, email)
}

func (r *UserRepository) FindUserByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, selectUserByID, id)
}

func (r *UserRepository) findOne(ctx context.Context, query, arg string) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		code, _ := pgError(err)
		if errors.Is(err, pgx.ErrNoRows) || code == pgInvalidTextRepresentation {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	return u, err
}
