package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/influxdata/influxadm"
	"github.com/influxdata/influxadm/kit/cli"
	"github.com/influxdata/influxadm/kit/platform/errors"
	"github.com/influxdata/influxadm/reconcile"
)

var privilegeFlags struct {
	username  string
	database  string
	privilege string
	state     string
	dryRun    bool
}

var privilegeOpts []cli.Opt

func privilegeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "privilege",
		Short: "Ensure a per-database privilege grant is present or absent",
		Args:  cobra.NoArgs,
		RunE:  privilegeApplyF,
	}
	opts := append(connectionOpts(),
		cli.Opt{
			DestP:    &privilegeFlags.username,
			Flag:     "username",
			Desc:     "name of the user to grant or revoke privileges for",
			Required: true,
		},
		cli.Opt{
			DestP:    &privilegeFlags.database,
			Flag:     "database",
			Desc:     "database on which to grant or revoke privileges",
			Required: true,
		},
		cli.Opt{
			DestP:    &privilegeFlags.privilege,
			Flag:     "privilege",
			Desc:     "privilege to grant or revoke: read, write, or all",
			Required: true,
		},
		cli.Opt{
			DestP:   &privilegeFlags.state,
			Flag:    "state",
			Default: "present",
			Desc:    "whether the privilege should be present or absent",
		},
		cli.Opt{
			DestP:   &privilegeFlags.dryRun,
			Flag:    "dry-run",
			Default: false,
			Desc:    "report the would-be action without issuing it",
		},
	)
	cli.BindOptions(cmd, opts)
	privilegeOpts = opts

	return cmd
}

func privilegeApplyF(cmd *cobra.Command, args []string) error {
	state, err := influxadm.ParseState(privilegeFlags.state)
	if err != nil {
		return &errors.Error{Code: errors.EInvalid, Err: err}
	}
	privilege, err := influxadm.ParsePrivilege(privilegeFlags.privilege)
	if err != nil {
		return &errors.Error{Code: errors.EInvalid, Err: err}
	}

	log := newLogger()
	defer func() { _ = log.Sync() }()
	logConfig(cmd, log, privilegeOpts)

	c, err := newClient(cmd, log)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := reconcile.NewPrivilegeReconciler(c, c, log).Apply(context.Background(), reconcile.PrivilegeSpec{
		Username:  privilegeFlags.username,
		Database:  privilegeFlags.database,
		Privilege: privilege,
		State:     state,
		DryRun:    privilegeFlags.dryRun,
	})
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, res)
}
