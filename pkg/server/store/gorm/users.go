package gorm

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/tictoc/tictoc/pkg/model"
	"github.com/tictoc/tictoc/pkg/server/store"
)

// SQLSTATE unique_violation
const codeUniqueViolation = "23505"

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// ListUsers returns user views ordered by id
func (s *UsersStore) ListUsers(ctx context.Context, limit, offset int) ([]model.UserView, error) {
	query := s.db.WithContext(ctx).
		Model(&model.User{}).
		Select("id, name, email").
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	users := make([]model.UserView, 0)
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the total number of users
func (s *UsersStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateUser inserts a user and returns its view
func (s *UsersStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.UserView, error) {
	var user model.UserView
	tx := s.db.WithContext(ctx).Raw(
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?) RETURNING id, name, email`,
		name, email, passwordHash,
	).Scan(&user)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return nil, store.ErrEmailTaken
		}
		return nil, tx.Error
	}
	return &user, nil
}

// FindByEmail returns the full user record for email
func (s *UsersStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	tx := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &user, nil
}

// DeleteAll removes every user and restarts id numbering
func (s *UsersStore) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec(`TRUNCATE TABLE users RESTART IDENTITY`).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
