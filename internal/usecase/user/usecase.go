package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-record-service/internal/domain/user"
	apperrors "user-record-service/pkg/errors"
	"user-record-service/pkg/logger"
)

// Error messages carried by the returned *apperrors.AppError.
const (
	MsgMissingFields = "missing fields: name and value are required"
	MsgNotFound      = "record not found"
	MsgPingFailed    = "failed to connect to the database"
	MsgCreateFailed  = "failed to create record"
	MsgReadFailed    = "failed to read records"
	MsgUpdateFailed  = "failed to update record"
	MsgDeleteFailed  = "failed to delete record"
)

// Repository defines the data access operations on the users table.
// Update and Delete report the number of rows matched by id.
type Repository interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, u *domain.User) (int64, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, u *domain.User) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// UserUsecase implements Usecase on top of a Repository.
type UserUsecase struct {
	repo        Repository
	log         *zap.Logger
	validate    *validator.Validate
	pingTimeout time.Duration
}

// Option configures a UserUsecase.
type Option func(*UserUsecase)

// WithPingTimeout bounds the database probe. Zero means no bound.
func WithPingTimeout(d time.Duration) Option {
	return func(uc *UserUsecase) {
		uc.pingTimeout = d
	}
}

// New creates a new UserUsecase.
func New(r Repository, log *zap.Logger, opts ...Option) *UserUsecase {
	uc := &UserUsecase{repo: r, log: log, validate: validator.New()}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// missingFields lists the struct fields that failed the required check.
func missingFields(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, strings.ToLower(e.Field()))
	}
	return strings.Join(fields, ",")
}

// Ping probes the database.
func (uc *UserUsecase) Ping(ctx context.Context) error {
	if uc.pingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.pingTimeout)
		defer cancel()
	}
	if err := uc.repo.Ping(ctx); err != nil {
		logger.WithContext(ctx, uc.log).Error("database ping failed", zap.Error(err))
		return apperrors.NewStorageError(MsgPingFailed, err)
	}
	return nil
}

// CreateUser validates the payload and inserts a new row.
func (uc *UserUsecase) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("create user validation failed", zap.String("missing", missingFields(err)))
		return nil, apperrors.NewValidationError(MsgMissingFields)
	}

	id, err := uc.repo.Create(ctx, &domain.User{Name: in.Name, Value: in.Value})
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, apperrors.NewStorageError(MsgCreateFailed, err)
	}

	log.Info("user created", zap.Int64("id", id))
	return &CreateUserResponse{ID: id}, nil
}

// ListUsers returns every row. An empty table yields an empty, non-nil slice.
func (uc *UserUsecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to list users", zap.Error(err))
		return nil, apperrors.NewStorageError(MsgReadFailed, err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = User{ID: du.ID, Name: du.Name, Value: du.Value}
	}

	return &ListUsersResponse{Users: users}, nil
}

// UpdateUser validates the payload and rewrites name and value of the row with the given id.
func (uc *UserUsecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log).With(zap.String("id", in.ID))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("update user validation failed", zap.String("missing", missingFields(err)))
		return nil, apperrors.NewValidationError(MsgMissingFields)
	}

	affected, err := uc.repo.Update(ctx, in.ID, &domain.User{Name: in.Name, Value: in.Value})
	if err != nil {
		log.Error("failed to update user", zap.Error(err))
		return nil, apperrors.NewStorageError(MsgUpdateFailed, err)
	}
	if affected == 0 {
		log.Warn("update matched no user")
		return nil, apperrors.NewNotFoundError(MsgNotFound)
	}

	log.Info("user updated")
	return &UpdateUserResponse{ID: in.ID}, nil
}

// DeleteUser removes the row with the given id.
func (uc *UserUsecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, uc.log).With(zap.String("id", in.ID))

	affected, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		log.Error("failed to delete user", zap.Error(err))
		return nil, apperrors.NewStorageError(MsgDeleteFailed, err)
	}
	if affected == 0 {
		log.Warn("delete matched no user")
		return nil, apperrors.NewNotFoundError(MsgNotFound)
	}

	log.Info("user deleted")
	return &DeleteUserResponse{ID: in.ID}, nil
}
