// Package reconcile compares desired user and privilege state against what an
// InfluxDB server reports and issues at most one mutating call per
// invocation.
package reconcile

// Action is the mutating call a reconciliation decided on.
type Action int

const (
	ActionNone Action = iota
	ActionCreateUser
	ActionDropUser
	ActionGrantAdmin
	ActionRevokeAdmin
	ActionSetPassword
	ActionGrantPrivilege
	ActionRevokePrivilege
)

// String returns the action name used in the CLI result output.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCreateUser:
		return "create-user"
	case ActionDropUser:
		return "drop-user"
	case ActionGrantAdmin:
		return "grant-admin"
	case ActionRevokeAdmin:
		return "revoke-admin"
	case ActionSetPassword:
		return "set-password"
	case ActionGrantPrivilege:
		return "grant-privilege"
	case ActionRevokePrivilege:
		return "revoke-privilege"
	}
	return ""
}

// Result reports the outcome of one reconciliation. Changed is true when a
// mutation was issued, or would have been issued in dry-run mode.
type Result struct {
	Changed bool
	Action  Action
}
