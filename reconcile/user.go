package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/influxdata/influxadm"
	"github.com/influxdata/influxadm/kit/platform/errors"
)

// UserSpec is the desired state of a single user account.
type UserSpec struct {
	Name     string
	Password string
	Admin    bool
	State    influxadm.State

	// UpdatePassword also rotates the password of an existing user whose
	// admin flag already matches. Off by default: passwords are otherwise
	// only set at creation.
	UpdatePassword bool

	// DryRun reports the would-be action without issuing it.
	DryRun bool
}

// UserReconciler converges a user account to a UserSpec.
type UserReconciler struct {
	Users influxadm.UserService
	Log   *zap.Logger
}

// NewUserReconciler returns a reconciler over svc logging to log.
func NewUserReconciler(svc influxadm.UserService, log *zap.Logger) *UserReconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserReconciler{Users: svc, Log: log}
}

// Apply reads the current user list, compares it against spec, and issues the
// single call needed to converge, if any. Admin convergence and password
// rotation are never combined: the admin toggle wins, keeping the
// one-mutation-per-invocation contract.
func (r *UserReconciler) Apply(ctx context.Context, spec UserSpec) (Result, error) {
	if err := spec.validate(); err != nil {
		return Result{}, err
	}

	users, err := r.Users.Users(ctx)
	if err != nil {
		return Result{}, err
	}
	user := influxadm.FindUser(users, spec.Name)

	switch spec.State {
	case influxadm.Present:
		if user == nil {
			return r.mutate(spec.DryRun, ActionCreateUser, spec.Name, func() error {
				return r.Users.CreateUser(ctx, spec.Name, spec.Password, spec.Admin)
			})
		}
		if user.Admin != spec.Admin {
			if spec.Admin {
				return r.mutate(spec.DryRun, ActionGrantAdmin, spec.Name, func() error {
					return r.Users.GrantAdminPrivileges(ctx, spec.Name)
				})
			}
			return r.mutate(spec.DryRun, ActionRevokeAdmin, spec.Name, func() error {
				return r.Users.RevokeAdminPrivileges(ctx, spec.Name)
			})
		}
		if spec.UpdatePassword {
			return r.mutate(spec.DryRun, ActionSetPassword, spec.Name, func() error {
				return r.Users.SetPassword(ctx, spec.Name, spec.Password)
			})
		}
		return Result{}, nil

	case influxadm.Absent:
		if user == nil {
			return Result{}, nil
		}
		return r.mutate(spec.DryRun, ActionDropUser, spec.Name, func() error {
			return r.Users.DropUser(ctx, spec.Name)
		})
	}

	return Result{}, &errors.Error{Code: errors.EInvalid, Msg: fmt.Sprintf("invalid state %d", spec.State)}
}

func (s UserSpec) validate() error {
	if s.Name == "" {
		return &errors.Error{Code: errors.EInvalid, Msg: "name is required"}
	}
	if s.Password == "" {
		return &errors.Error{Code: errors.EInvalid, Msg: "password is required"}
	}
	return nil
}

func (r *UserReconciler) mutate(dryRun bool, action Action, name string, fn func() error) (Result, error) {
	r.Log.Info("reconciling user",
		zap.String("user", name),
		zap.Stringer("action", action),
		zap.Bool("dry_run", dryRun))

	if dryRun {
		return Result{Changed: true, Action: action}, nil
	}
	if err := fn(); err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Action: action}, nil
}
