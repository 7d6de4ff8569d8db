package gormdb

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-record-service/internal/domain/user"
	"user-record-service/pkg/logger"
)

// UserRepo implements the usecase Repository on top of a ConnProvider.
// Every method runs exactly one statement on its own connection.
type UserRepo struct {
	conns ConnProvider
	log   *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(conns ConnProvider, log *zap.Logger) *UserRepo {
	return &UserRepo{conns: conns, log: log}
}

// Ping checks that a connection can be acquired and answers.
func (r *UserRepo) Ping(ctx context.Context) error {
	if err := r.conns.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Create inserts a new user and returns the id assigned by the database.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := UserSchema{Name: u.Name, Value: u.Value}

	err := r.conns.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx, r.log).Debug("user inserted", zap.Int64("id", model.ID))
	return model.ID, nil
}

// List returns every row in storage order.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema

	err := r.conns.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = user.User{ID: model.ID, Name: model.Name, Value: model.Value}
	}
	return users, nil
}

// Update rewrites name and value of the row matching id and returns the
// number of rows matched.
func (r *UserRepo) Update(ctx context.Context, id string, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	var affected int64
	err := r.conns.WithConn(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&UserSchema{}).
			Where("id = ?", id).
			Updates(map[string]any{"name": u.Name, "value": u.Value})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update user: %w", err)
	}

	logger.WithContext(ctx, r.log).Debug("user update executed", zap.String("id", id), zap.Int64("rows", affected))
	return affected, nil
}

// Delete removes the row matching id and returns the number of rows removed.
func (r *UserRepo) Delete(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := r.conns.WithConn(ctx, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&UserSchema{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	logger.WithContext(ctx, r.log).Debug("user delete executed", zap.String("id", id), zap.Int64("rows", affected))
	return affected, nil
}
