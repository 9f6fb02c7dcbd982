package influxadm

import (
	"context"
	"fmt"

	"github.com/influxdata/influxql"
)

// Grant is a per-database privilege held by a user, as reported by
// SHOW GRANTS FOR.
type Grant struct {
	Database  string
	Privilege influxql.Privilege
}

// GrantService is the set of privilege management calls the reconcilers need
// from an InfluxDB server.
type GrantService interface {
	// Grants returns the database privileges granted to username.
	Grants(ctx context.Context, username string) ([]Grant, error)

	// GrantPrivilege grants p on database to username.
	GrantPrivilege(ctx context.Context, p influxql.Privilege, database, username string) error

	// RevokePrivilege revokes p on database from username.
	RevokePrivilege(ctx context.Context, p influxql.Privilege, database, username string) error
}

// ParsePrivilege converts the invocation token into a privilege. Only the
// grantable levels are accepted.
func ParsePrivilege(s string) (influxql.Privilege, error) {
	switch s {
	case "read":
		return influxql.ReadPrivilege, nil
	case "write":
		return influxql.WritePrivilege, nil
	case "all":
		return influxql.AllPrivileges, nil
	default:
		return 0, fmt.Errorf("invalid privilege %q; must be read, write, or all", s)
	}
}

// PrivilegeFromServer maps a privilege string reported by the server to its
// enum value. The server vocabulary is a closed set of four strings; anything
// else returns ok=false and callers skip the row.
func PrivilegeFromServer(s string) (p influxql.Privilege, ok bool) {
	switch s {
	case "READ":
		return influxql.ReadPrivilege, true
	case "WRITE":
		return influxql.WritePrivilege, true
	case "ALL PRIVILEGES":
		return influxql.AllPrivileges, true
	case "NO PRIVILEGES":
		return influxql.NoPrivileges, true
	default:
		return 0, false
	}
}

// FindGrant scans grants for one on database whose privilege maps to p.
// Rows with unrecognized privilege strings have already been dropped by the
// client adapter. It returns nil when no grant matches.
func FindGrant(grants []Grant, database string, p influxql.Privilege) *Grant {
	for i := range grants {
		if grants[i].Database == database && grants[i].Privilege == p {
			return &grants[i]
		}
	}
	return nil
}
