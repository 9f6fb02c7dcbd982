package reconcile

import (
	"context"
	"fmt"

	"github.com/influxdata/influxql"
	"go.uber.org/zap"

	"github.com/influxdata/influxadm"
	"github.com/influxdata/influxadm/kit/platform/errors"
)

// PrivilegeSpec is the desired state of one (user, database) grant.
type PrivilegeSpec struct {
	Username  string
	Database  string
	Privilege influxql.Privilege
	State     influxadm.State

	// DryRun reports the would-be action without issuing it.
	DryRun bool
}

// PrivilegeReconciler converges a per-database grant to a PrivilegeSpec.
// Grants can only be reconciled for users that exist; a missing user is a
// fatal not-found error, never an implicit create.
type PrivilegeReconciler struct {
	Users  influxadm.UserService
	Grants influxadm.GrantService
	Log    *zap.Logger
}

// NewPrivilegeReconciler returns a reconciler over users and grants logging
// to log.
func NewPrivilegeReconciler(users influxadm.UserService, grants influxadm.GrantService, log *zap.Logger) *PrivilegeReconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PrivilegeReconciler{Users: users, Grants: grants, Log: log}
}

// Apply resolves the user, reads its grants, and issues the single grant or
// revoke needed to converge, if any.
func (r *PrivilegeReconciler) Apply(ctx context.Context, spec PrivilegeSpec) (Result, error) {
	if err := spec.validate(); err != nil {
		return Result{}, err
	}

	users, err := r.Users.Users(ctx)
	if err != nil {
		return Result{}, err
	}
	if influxadm.FindUser(users, spec.Username) == nil {
		return Result{}, &errors.Error{
			Code: errors.ENotFound,
			Msg:  fmt.Sprintf("no user %q", spec.Username),
		}
	}

	grants, err := r.Grants.Grants(ctx, spec.Username)
	if err != nil {
		return Result{}, err
	}
	grant := influxadm.FindGrant(grants, spec.Database, spec.Privilege)

	switch spec.State {
	case influxadm.Present:
		if grant != nil {
			return Result{}, nil
		}
		return r.mutate(spec, ActionGrantPrivilege, func() error {
			return r.Grants.GrantPrivilege(ctx, spec.Privilege, spec.Database, spec.Username)
		})

	case influxadm.Absent:
		if grant == nil {
			return Result{}, nil
		}
		return r.mutate(spec, ActionRevokePrivilege, func() error {
			return r.Grants.RevokePrivilege(ctx, spec.Privilege, spec.Database, spec.Username)
		})
	}

	return Result{}, &errors.Error{Code: errors.EInvalid, Msg: fmt.Sprintf("invalid state %d", spec.State)}
}

func (s PrivilegeSpec) validate() error {
	if s.Username == "" {
		return &errors.Error{Code: errors.EInvalid, Msg: "username is required"}
	}
	if s.Database == "" {
		return &errors.Error{Code: errors.EInvalid, Msg: "database is required"}
	}
	switch s.Privilege {
	case influxql.ReadPrivilege, influxql.WritePrivilege, influxql.AllPrivileges:
	default:
		return &errors.Error{Code: errors.EInvalid, Msg: "privilege must be read, write, or all"}
	}
	return nil
}

func (r *PrivilegeReconciler) mutate(spec PrivilegeSpec, action Action, fn func() error) (Result, error) {
	r.Log.Info("reconciling privilege",
		zap.String("user", spec.Username),
		zap.String("database", spec.Database),
		zap.String("privilege", spec.Privilege.String()),
		zap.Stringer("action", action),
		zap.Bool("dry_run", spec.DryRun))

	if spec.DryRun {
		return Result{Changed: true, Action: action}, nil
	}
	if err := fn(); err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Action: action}, nil
}
