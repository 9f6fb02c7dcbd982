// Package mock provides function-field test doubles for the influxadm
// service interfaces.
package mock

import (
	"context"

	"github.com/influxdata/influxql"

	"github.com/influxdata/influxadm"
)

var _ influxadm.UserService = (*UserService)(nil)

// UserService is a mock implementation of influxadm.UserService. Calls
// records every invoked mutating operation in order so tests can assert the
// at-most-one-mutation contract.
type UserService struct {
	UsersFn                 func(context.Context) ([]influxadm.User, error)
	CreateUserFn            func(ctx context.Context, name, password string, admin bool) error
	DropUserFn              func(ctx context.Context, name string) error
	GrantAdminPrivilegesFn  func(ctx context.Context, name string) error
	RevokeAdminPrivilegesFn func(ctx context.Context, name string) error
	SetPasswordFn           func(ctx context.Context, name, password string) error

	Calls []string
}

// NewUserService returns a mock of UserService where its methods will return
// zero values.
func NewUserService() *UserService {
	return &UserService{
		UsersFn:                 func(context.Context) ([]influxadm.User, error) { return nil, nil },
		CreateUserFn:            func(context.Context, string, string, bool) error { return nil },
		DropUserFn:              func(context.Context, string) error { return nil },
		GrantAdminPrivilegesFn:  func(context.Context, string) error { return nil },
		RevokeAdminPrivilegesFn: func(context.Context, string) error { return nil },
		SetPasswordFn:           func(context.Context, string, string) error { return nil },
	}
}

// Users returns every user known to the server.
func (s *UserService) Users(ctx context.Context) ([]influxadm.User, error) {
	return s.UsersFn(ctx)
}

// CreateUser creates a user.
func (s *UserService) CreateUser(ctx context.Context, name, password string, admin bool) error {
	s.Calls = append(s.Calls, "CreateUser")
	return s.CreateUserFn(ctx, name, password, admin)
}

// DropUser removes a user.
func (s *UserService) DropUser(ctx context.Context, name string) error {
	s.Calls = append(s.Calls, "DropUser")
	return s.DropUserFn(ctx, name)
}

// GrantAdminPrivileges makes a user an admin.
func (s *UserService) GrantAdminPrivileges(ctx context.Context, name string) error {
	s.Calls = append(s.Calls, "GrantAdminPrivileges")
	return s.GrantAdminPrivilegesFn(ctx, name)
}

// RevokeAdminPrivileges removes admin from a user.
func (s *UserService) RevokeAdminPrivileges(ctx context.Context, name string) error {
	s.Calls = append(s.Calls, "RevokeAdminPrivileges")
	return s.RevokeAdminPrivilegesFn(ctx, name)
}

// SetPassword changes a user's password.
func (s *UserService) SetPassword(ctx context.Context, name, password string) error {
	s.Calls = append(s.Calls, "SetPassword")
	return s.SetPasswordFn(ctx, name, password)
}

var _ influxadm.GrantService = (*GrantService)(nil)

// GrantService is a mock implementation of influxadm.GrantService.
type GrantService struct {
	GrantsFn          func(ctx context.Context, username string) ([]influxadm.Grant, error)
	GrantPrivilegeFn  func(ctx context.Context, p influxql.Privilege, database, username string) error
	RevokePrivilegeFn func(ctx context.Context, p influxql.Privilege, database, username string) error

	Calls []string
}

// NewGrantService returns a mock of GrantService where its methods will
// return zero values.
func NewGrantService() *GrantService {
	return &GrantService{
		GrantsFn:          func(context.Context, string) ([]influxadm.Grant, error) { return nil, nil },
		GrantPrivilegeFn:  func(context.Context, influxql.Privilege, string, string) error { return nil },
		RevokePrivilegeFn: func(context.Context, influxql.Privilege, string, string) error { return nil },
	}
}

// Grants returns the grants for username.
func (s *GrantService) Grants(ctx context.Context, username string) ([]influxadm.Grant, error) {
	return s.GrantsFn(ctx, username)
}

// GrantPrivilege grants p on database to username.
func (s *GrantService) GrantPrivilege(ctx context.Context, p influxql.Privilege, database, username string) error {
	s.Calls = append(s.Calls, "GrantPrivilege")
	return s.GrantPrivilegeFn(ctx, p, database, username)
}

// RevokePrivilege revokes p on database from username.
func (s *GrantService) RevokePrivilege(ctx context.Context, p influxql.Privilege, database, username string) error {
	s.Calls = append(s.Calls, "RevokePrivilege")
	return s.RevokePrivilegeFn(ctx, p, database, username)
}
