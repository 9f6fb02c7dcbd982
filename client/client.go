// Package client adapts the published InfluxDB 1.x HTTP client to the
// service interfaces the influxadm reconcilers consume. All admin operations
// go through the query endpoint as InfluxQL statements; the wire protocol,
// authentication, and response decoding are the client library's business.
package client

import (
	"context"
	"fmt"
	"time"

	influxclient "github.com/influxdata/influxdb1-client/v2"
	"github.com/influxdata/influxql"
	perrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/influxdata/influxadm"
	"github.com/influxdata/influxadm/kit/platform/errors"
)

// Config is the connection configuration for an InfluxDB server.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration

	// UserAgent defaults to "influxadm".
	UserAgent string

	InsecureSkipVerify bool
}

// Addr returns the http URL of the query endpoint host.
func (c Config) Addr() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// Client issues InfluxQL admin statements against a single server.
type Client struct {
	ix  influxclient.Client
	log *zap.Logger
}

var _ influxadm.UserService = (*Client)(nil)
var _ influxadm.GrantService = (*Client)(nil)

// NewClient initializes a Client. The underlying HTTP client is not
// exercised until the first call, so a bad address surfaces as an
// unavailable error there rather than here.
func NewClient(conf Config, log *zap.Logger) (*Client, error) {
	if conf.UserAgent == "" {
		conf.UserAgent = "influxadm"
	}
	ix, err := influxclient.NewHTTPClient(influxclient.HTTPConfig{
		Addr:               conf.Addr(),
		Username:           conf.Username,
		Password:           conf.Password,
		UserAgent:          conf.UserAgent,
		Timeout:            conf.Timeout,
		InsecureSkipVerify: conf.InsecureSkipVerify,
	})
	if err != nil {
		return nil, &errors.Error{Code: errors.EInvalid, Op: "client.NewClient", Err: err}
	}
	return &Client{ix: ix, log: log}, nil
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	return c.ix.Close()
}

// Users returns every user known to the server.
func (c *Client) Users(ctx context.Context) ([]influxadm.User, error) {
	const op = "client.Users"
	resp, err := c.exec(ctx, op, (&influxql.ShowUsersStatement{}).String(), "")
	if err != nil {
		return nil, err
	}
	users, err := parseUsers(resp)
	if err != nil {
		return nil, &errors.Error{Code: errors.EInternal, Op: op, Err: err}
	}
	return users, nil
}

// Grants returns the database privileges granted to username. Rows whose
// privilege string is not in the known server vocabulary are skipped.
func (c *Client) Grants(ctx context.Context, username string) ([]influxadm.Grant, error) {
	const op = "client.Grants"
	stmt := (&influxql.ShowGrantsForUserStatement{Name: username}).String()
	resp, err := c.exec(ctx, op, stmt, "")
	if err != nil {
		return nil, err
	}
	grants, err := parseGrants(resp)
	if err != nil {
		return nil, &errors.Error{Code: errors.EInternal, Op: op, Err: err}
	}
	return grants, nil
}

// CreateUser creates a user, optionally with admin privileges.
func (c *Client) CreateUser(ctx context.Context, name, password string, admin bool) error {
	stmt := fmt.Sprintf("CREATE USER %s WITH PASSWORD %s",
		influxql.QuoteIdent(name), influxql.QuoteString(password))
	if admin {
		stmt += " WITH ALL PRIVILEGES"
	}
	// The AST rendering redacts the password, so it is safe to log.
	display := (&influxql.CreateUserStatement{Name: name, Admin: admin}).String()
	_, err := c.exec(ctx, "client.CreateUser", stmt, display)
	return err
}

// DropUser removes a user.
func (c *Client) DropUser(ctx context.Context, name string) error {
	stmt := (&influxql.DropUserStatement{Name: name}).String()
	_, err := c.exec(ctx, "client.DropUser", stmt, "")
	return err
}

// GrantAdminPrivileges makes an existing user a cluster admin.
func (c *Client) GrantAdminPrivileges(ctx context.Context, name string) error {
	stmt := (&influxql.GrantAdminStatement{User: name}).String()
	_, err := c.exec(ctx, "client.GrantAdminPrivileges", stmt, "")
	return err
}

// RevokeAdminPrivileges removes cluster admin from an existing user.
func (c *Client) RevokeAdminPrivileges(ctx context.Context, name string) error {
	stmt := (&influxql.RevokeAdminStatement{User: name}).String()
	_, err := c.exec(ctx, "client.RevokeAdminPrivileges", stmt, "")
	return err
}

// SetPassword changes the password of an existing user.
func (c *Client) SetPassword(ctx context.Context, name, password string) error {
	stmt := fmt.Sprintf("SET PASSWORD FOR %s = %s",
		influxql.QuoteIdent(name), influxql.QuoteString(password))
	display := (&influxql.SetPasswordUserStatement{Name: name}).String()
	_, err := c.exec(ctx, "client.SetPassword", stmt, display)
	return err
}

// GrantPrivilege grants p on database to username.
func (c *Client) GrantPrivilege(ctx context.Context, p influxql.Privilege, database, username string) error {
	stmt := (&influxql.GrantStatement{Privilege: p, On: database, User: username}).String()
	_, err := c.exec(ctx, "client.GrantPrivilege", stmt, "")
	return err
}

// RevokePrivilege revokes p on database from username.
func (c *Client) RevokePrivilege(ctx context.Context, p influxql.Privilege, database, username string) error {
	stmt := (&influxql.RevokeStatement{Privilege: p, On: database, User: username}).String()
	_, err := c.exec(ctx, "client.RevokePrivilege", stmt, "")
	return err
}

// exec runs one InfluxQL statement. A transport failure is tagged
// EUnavailable with the underlying error text preserved; an error the server
// reports inside the response is tagged ERejected with the server's message.
// display, when non-empty, replaces stmt in the debug log for statements that
// carry secrets.
func (c *Client) exec(ctx context.Context, op, stmt, display string) (*influxclient.Response, error) {
	if display == "" {
		display = stmt
	}
	c.log.Debug("executing statement", zap.String("op", op), zap.String("query", display))

	if err := ctx.Err(); err != nil {
		return nil, &errors.Error{Code: errors.EUnavailable, Op: op, Err: err}
	}

	resp, err := c.ix.Query(influxclient.NewQuery(stmt, "", ""))
	if err != nil {
		return nil, &errors.Error{Code: errors.EUnavailable, Op: op, Err: err}
	}
	if err := resp.Error(); err != nil {
		return nil, &errors.Error{Code: errors.ERejected, Op: op, Err: err}
	}
	return resp, nil
}

// parseUsers decodes a SHOW USERS response: one series with columns
// (user, admin).
func parseUsers(resp *influxclient.Response) ([]influxadm.User, error) {
	users := []influxadm.User{}
	for _, result := range resp.Results {
		for _, series := range result.Series {
			nameIdx, adminIdx := columnIndex(series.Columns, "user"), columnIndex(series.Columns, "admin")
			if nameIdx < 0 || adminIdx < 0 {
				return nil, perrors.Errorf("unexpected SHOW USERS columns %v", series.Columns)
			}
			for _, row := range series.Values {
				name, ok := row[nameIdx].(string)
				if !ok {
					return nil, perrors.Errorf("unexpected user name %v", row[nameIdx])
				}
				admin, ok := row[adminIdx].(bool)
				if !ok {
					return nil, perrors.Errorf("unexpected admin flag %v for user %q", row[adminIdx], name)
				}
				users = append(users, influxadm.User{Name: name, Admin: admin})
			}
		}
	}
	return users, nil
}

// parseGrants decodes a SHOW GRANTS FOR response: one series with columns
// (database, privilege). Unknown privilege strings are dropped.
func parseGrants(resp *influxclient.Response) ([]influxadm.Grant, error) {
	grants := []influxadm.Grant{}
	for _, result := range resp.Results {
		for _, series := range result.Series {
			dbIdx, privIdx := columnIndex(series.Columns, "database"), columnIndex(series.Columns, "privilege")
			if dbIdx < 0 || privIdx < 0 {
				return nil, perrors.Errorf("unexpected SHOW GRANTS columns %v", series.Columns)
			}
			for _, row := range series.Values {
				database, ok := row[dbIdx].(string)
				if !ok {
					return nil, perrors.Errorf("unexpected database %v", row[dbIdx])
				}
				privilege, ok := row[privIdx].(string)
				if !ok {
					return nil, perrors.Errorf("unexpected privilege %v for database %q", row[privIdx], database)
				}
				p, ok := influxadm.PrivilegeFromServer(privilege)
				if !ok {
					continue
				}
				grants = append(grants, influxadm.Grant{Database: database, Privilege: p})
			}
		}
	}
	return grants, nil
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
