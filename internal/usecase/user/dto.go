package user

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name  string `validate:"required"`
	Value string `validate:"required"`
}

// CreateUserResponse carries the id assigned by the database.
type CreateUserResponse struct {
	ID int64
}

// UpdateUserRequest represents the request payload for updating an existing user.
// ID is passed through to the statement exactly as received.
type UpdateUserRequest struct {
	ID    string
	Name  string `validate:"required"`
	Value string `validate:"required"`
}

// UpdateUserResponse is returned after a successful update.
type UpdateUserResponse struct {
	ID string
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string
}

// DeleteUserResponse is returned after a successful delete.
type DeleteUserResponse struct {
	ID string
}

// ListUsersResponse holds every stored user in storage order.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Value string
}
