package influxadm

import "context"

// User is an InfluxDB user account as reported by SHOW USERS.
type User struct {
	Name  string
	Admin bool
}

// UserService is the set of user management calls the reconcilers need from
// an InfluxDB server.
type UserService interface {
	// Users returns every user known to the server.
	Users(ctx context.Context) ([]User, error)

	// CreateUser creates a user, optionally with admin privileges.
	CreateUser(ctx context.Context, name, password string, admin bool) error

	// DropUser removes a user.
	DropUser(ctx context.Context, name string) error

	// GrantAdminPrivileges makes an existing user a cluster admin.
	GrantAdminPrivileges(ctx context.Context, name string) error

	// RevokeAdminPrivileges removes cluster admin from an existing user.
	RevokeAdminPrivileges(ctx context.Context, name string) error

	// SetPassword changes the password of an existing user.
	SetPassword(ctx context.Context, name, password string) error
}

// FindUser scans users for an exact, case-sensitive name match. It returns
// nil when no user matches.
func FindUser(users []User, name string) *User {
	for i := range users {
		if users[i].Name == name {
			return &users[i]
		}
	}
	return nil
}
