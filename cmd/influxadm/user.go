package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/influxdata/influxadm"
	"github.com/influxdata/influxadm/kit/cli"
	"github.com/influxdata/influxadm/kit/platform/errors"
	"github.com/influxdata/influxadm/reconcile"
)

var userFlags struct {
	name           string
	password       string
	admin          bool
	state          string
	updatePassword bool
	dryRun         bool
}

// userOpts is kept so the apply command can redact secret flags when logging
// its effective configuration.
var userOpts []cli.Opt

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Ensure a user exists or is absent",
		Args:  cobra.NoArgs,
		RunE:  userApplyF,
	}
	opts := append(connectionOpts(),
		cli.Opt{
			DestP:    &userFlags.name,
			Flag:     "name",
			Desc:     "name of the user to create or drop",
			Required: true,
		},
		cli.Opt{
			DestP:    &userFlags.password,
			Flag:     "password",
			Desc:     "password of the user",
			Required: true,
			Secret:   true,
		},
		cli.Opt{
			DestP:   &userFlags.admin,
			Flag:    "admin",
			Default: false,
			Desc:    "whether the user is an admin",
		},
		cli.Opt{
			DestP:   &userFlags.state,
			Flag:    "state",
			Default: "present",
			Desc:    "whether the user should be present or absent",
		},
		cli.Opt{
			DestP:   &userFlags.updatePassword,
			Flag:    "update-password",
			Default: false,
			Desc:    "also rotate the password of an existing user",
		},
		cli.Opt{
			DestP:   &userFlags.dryRun,
			Flag:    "dry-run",
			Default: false,
			Desc:    "report the would-be action without issuing it",
		},
	)
	cli.BindOptions(cmd, opts)
	userOpts = opts
	cmd.AddCommand(userListCmd())

	return cmd
}

func userApplyF(cmd *cobra.Command, args []string) error {
	state, err := influxadm.ParseState(userFlags.state)
	if err != nil {
		return &errors.Error{Code: errors.EInvalid, Err: err}
	}

	log := newLogger()
	defer func() { _ = log.Sync() }()
	logConfig(cmd, log, userOpts)

	c, err := newClient(cmd, log)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := reconcile.NewUserReconciler(c, log).Apply(context.Background(), reconcile.UserSpec{
		Name:           userFlags.name,
		Password:       userFlags.password,
		Admin:          userFlags.admin,
		State:          state,
		UpdatePassword: userFlags.updatePassword,
		DryRun:         userFlags.dryRun,
	})
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, res)
}

func userListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users and their admin status",
		Args:  cobra.NoArgs,
		RunE:  userListF,
	}
	cli.BindOptions(cmd, connectionOpts())

	return cmd
}

func userListF(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	c, err := newClient(cmd, log)
	if err != nil {
		return err
	}
	defer c.Close()

	users, err := c.Users(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "NAME\tADMIN")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%v\n", u.Name, u.Admin)
	}
	return w.Flush()
}
