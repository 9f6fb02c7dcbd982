package reconcile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/influxdata/influxadm"
	"github.com/influxdata/influxadm/kit/platform/errors"
	"github.com/influxdata/influxadm/mock"
	"github.com/influxdata/influxadm/reconcile"
)

func TestUserReconciler_Apply(t *testing.T) {
	tests := []struct {
		name      string
		existing  []influxadm.User
		spec      reconcile.UserSpec
		want      reconcile.Result
		wantCalls []string
	}{
		{
			name:     "present and admin flag matches is a no-op",
			existing: []influxadm.User{{Name: "todd", Admin: false}},
			spec:     reconcile.UserSpec{Name: "todd", Password: "pw", State: influxadm.Present},
			want:     reconcile.Result{},
		},
		{
			name:      "present and missing creates the user",
			existing:  []influxadm.User{{Name: "someone-else"}},
			spec:      reconcile.UserSpec{Name: "todd", Password: "pw", State: influxadm.Present},
			want:      reconcile.Result{Changed: true, Action: reconcile.ActionCreateUser},
			wantCalls: []string{"CreateUser"},
		},
		{
			name:      "present with admin mismatch grants admin",
			existing:  []influxadm.User{{Name: "todd", Admin: false}},
			spec:      reconcile.UserSpec{Name: "todd", Password: "pw", Admin: true, State: influxadm.Present},
			want:      reconcile.Result{Changed: true, Action: reconcile.ActionGrantAdmin},
			wantCalls: []string{"GrantAdminPrivileges"},
		},
		{
			name:      "present with admin mismatch revokes admin",
			existing:  []influxadm.User{{Name: "todd", Admin: true}},
			spec:      reconcile.UserSpec{Name: "todd", Password: "pw", Admin: false, State: influxadm.Present},
			want:      reconcile.Result{Changed: true, Action: reconcile.ActionRevokeAdmin},
			wantCalls: []string{"RevokeAdminPrivileges"},
		},
		{
			name:      "absent and exists drops the user",
			existing:  []influxadm.User{{Name: "todd"}},
			spec:      reconcile.UserSpec{Name: "todd", Password: "pw", State: influxadm.Absent},
			want:      reconcile.Result{Changed: true, Action: reconcile.ActionDropUser},
			wantCalls: []string{"DropUser"},
		},
		{
			name:     "absent and missing is a no-op",
			existing: []influxadm.User{},
			spec:     reconcile.UserSpec{Name: "todd", Password: "pw", State: influxadm.Absent},
			want:     reconcile.Result{},
		},
		{
			name:      "update password rotates an existing matching user",
			existing:  []influxadm.User{{Name: "todd", Admin: false}},
			spec:      reconcile.UserSpec{Name: "todd", Password: "pw2", State: influxadm.Present, UpdatePassword: true},
			want:      reconcile.Result{Changed: true, Action: reconcile.ActionSetPassword},
			wantCalls: []string{"SetPassword"},
		},
		{
			name:      "name match is exact and case-sensitive",
			existing:  []influxadm.User{{Name: "Todd"}},
			spec:      reconcile.UserSpec{Name: "todd", Password: "pw", State: influxadm.Present},
			want:      reconcile.Result{Changed: true, Action: reconcile.ActionCreateUser},
			wantCalls: []string{"CreateUser"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mock.NewUserService()
			svc.UsersFn = func(context.Context) ([]influxadm.User, error) {
				return tt.existing, nil
			}
			r := reconcile.NewUserReconciler(svc, zaptest.NewLogger(t))

			got, err := r.Apply(context.Background(), tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, svc.Calls)
			assert.LessOrEqual(t, len(svc.Calls), 1, "at most one mutating call per invocation")
		})

		t.Run(tt.name+" (dry run)", func(t *testing.T) {
			svc := mock.NewUserService()
			svc.UsersFn = func(context.Context) ([]influxadm.User, error) {
				return tt.existing, nil
			}
			r := reconcile.NewUserReconciler(svc, zaptest.NewLogger(t))

			spec := tt.spec
			spec.DryRun = true
			got, err := r.Apply(context.Background(), spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "dry run must report the same outcome")
			assert.Empty(t, svc.Calls, "dry run must not issue mutating calls")
		})
	}
}

func TestUserReconciler_Apply_CreatePassesAdminThrough(t *testing.T) {
	svc := mock.NewUserService()
	svc.UsersFn = func(context.Context) ([]influxadm.User, error) { return nil, nil }

	var gotName, gotPassword string
	var gotAdmin bool
	svc.CreateUserFn = func(_ context.Context, name, password string, admin bool) error {
		gotName, gotPassword, gotAdmin = name, password, admin
		return nil
	}

	r := reconcile.NewUserReconciler(svc, zaptest.NewLogger(t))
	_, err := r.Apply(context.Background(), reconcile.UserSpec{
		Name:     "todd",
		Password: "secret",
		Admin:    true,
		State:    influxadm.Present,
	})
	require.NoError(t, err)
	assert.Equal(t, "todd", gotName)
	assert.Equal(t, "secret", gotPassword)
	assert.True(t, gotAdmin)
}

func TestUserReconciler_Apply_Validation(t *testing.T) {
	tests := []struct {
		name    string
		spec    reconcile.UserSpec
		wantMsg string
	}{
		{
			name:    "missing name",
			spec:    reconcile.UserSpec{Password: "pw", State: influxadm.Present},
			wantMsg: "name is required",
		},
		{
			name:    "missing password for present",
			spec:    reconcile.UserSpec{Name: "todd", State: influxadm.Present},
			wantMsg: "password is required",
		},
		{
			name:    "missing password for absent",
			spec:    reconcile.UserSpec{Name: "todd", State: influxadm.Absent},
			wantMsg: "password is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mock.NewUserService()
			listed := false
			svc.UsersFn = func(context.Context) ([]influxadm.User, error) {
				listed = true
				return nil, nil
			}
			r := reconcile.NewUserReconciler(svc, zaptest.NewLogger(t))

			_, err := r.Apply(context.Background(), tt.spec)
			require.Error(t, err)
			assert.Equal(t, errors.EInvalid, errors.ErrorCode(err))
			assert.Equal(t, tt.wantMsg, errors.ErrorMessage(err))
			assert.False(t, listed, "validation must reject before any server call")
		})
	}
}

func TestUserReconciler_Apply_ListFailureIsFatal(t *testing.T) {
	svc := mock.NewUserService()
	svc.UsersFn = func(context.Context) ([]influxadm.User, error) {
		return nil, &errors.Error{Code: errors.EUnavailable, Msg: "listing users"}
	}
	r := reconcile.NewUserReconciler(svc, zaptest.NewLogger(t))

	_, err := r.Apply(context.Background(), reconcile.UserSpec{
		Name: "todd", Password: "pw", State: influxadm.Present,
	})
	require.Error(t, err)
	assert.Equal(t, errors.EUnavailable, errors.ErrorCode(err))
	assert.Empty(t, svc.Calls)
}

func TestUserReconciler_Apply_MutationFailureIsFatal(t *testing.T) {
	svc := mock.NewUserService()
	svc.UsersFn = func(context.Context) ([]influxadm.User, error) {
		return []influxadm.User{{Name: "todd"}}, nil
	}
	svc.DropUserFn = func(context.Context, string) error {
		return &errors.Error{Code: errors.ERejected, Msg: "user not found"}
	}
	r := reconcile.NewUserReconciler(svc, zaptest.NewLogger(t))

	got, err := r.Apply(context.Background(), reconcile.UserSpec{Name: "todd", Password: "pw", State: influxadm.Absent})
	require.Error(t, err)
	assert.Equal(t, errors.ERejected, errors.ErrorCode(err))
	assert.False(t, got.Changed)
}

// Applying the same spec twice converges on the first run and is a no-op on
// the second.
func TestUserReconciler_Apply_Idempotence(t *testing.T) {
	var users []influxadm.User

	svc := mock.NewUserService()
	svc.UsersFn = func(context.Context) ([]influxadm.User, error) {
		return users, nil
	}
	svc.CreateUserFn = func(_ context.Context, name, password string, admin bool) error {
		users = append(users, influxadm.User{Name: name, Admin: admin})
		return nil
	}
	r := reconcile.NewUserReconciler(svc, zaptest.NewLogger(t))

	spec := reconcile.UserSpec{Name: "todd", Password: "pw", State: influxadm.Present}

	got, err := r.Apply(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, got.Changed)

	got, err = r.Apply(context.Background(), spec)
	require.NoError(t, err)
	assert.False(t, got.Changed)
	assert.Equal(t, []string{"CreateUser"}, svc.Calls)
}
