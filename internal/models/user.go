package models

// User roles. Role carries no enforcement in this system; it selects
// terminology and notification routing only.
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
)

// User is the session identity passed explicitly into operations that
// record authorship. It is a value, never ambient state.
type User struct {
	ID   string
	Name string
	Role string
}
