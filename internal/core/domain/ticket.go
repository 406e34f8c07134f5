package domain

// Ticket is a work item. Users referenced as assignee or supervisor
// cannot be deleted.
type Ticket struct {
	ID           int64  `db:"id"`
	Title        string `db:"title"`
	Status       string `db:"status"`
	AssigneeID   *int64 `db:"assignee_id"`
	SupervisorID *int64 `db:"supervisor_id"`
}
