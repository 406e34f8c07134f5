package domain

// Role is a named permission grouping referenced by users.
type Role struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}
