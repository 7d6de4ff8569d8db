package gormdb

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"type:varchar(255);not null"`
	Value string `gorm:"type:varchar(255);not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// EnsureSchema creates the users table when it does not exist yet.
// An existing table is never altered.
func EnsureSchema(ctx context.Context, conns ConnProvider, log *zap.Logger) error {
	return conns.WithConn(ctx, func(tx *gorm.DB) error {
		m := tx.Migrator()
		if m.HasTable(&UserSchema{}) {
			log.Debug("users table already present")
			return nil
		}
		if err := m.CreateTable(&UserSchema{}); err != nil {
			return fmt.Errorf("failed to create users table: %w", err)
		}
		log.Info("users table created")
		return nil
	})
}
