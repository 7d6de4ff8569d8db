package user

import "context"

// Usecase defines the interface for user operations exposed to the transports.
type Usecase interface {
	Ping(ctx context.Context) error
	CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error)
	ListUsers(ctx context.Context) (*ListUsersResponse, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error)
}
