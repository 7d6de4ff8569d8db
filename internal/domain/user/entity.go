package user

// User is a row of the users table.
type User struct {
	ID    int64  // ID is assigned by the database on insert and never changes
	Name  string // Name is required and non-empty
	Value string // Value is required and non-empty
}
