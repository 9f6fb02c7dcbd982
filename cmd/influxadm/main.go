// Command influxadm reconciles InfluxDB 1.x user accounts and per-database
// privilege grants against a desired state. Diagnostics go to stderr; stdout
// carries a single JSON result so orchestration callers can read the changed
// flag.
package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/influxdata/influxadm/client"
	"github.com/influxdata/influxadm/kit/cli"
	"github.com/influxdata/influxadm/logger"
	"github.com/influxdata/influxadm/reconcile"
)

var flags struct {
	host          string
	port          int
	loginUsername string
	loginPassword string
	timeout       time.Duration
	configPath    string
	logLevel      zapcore.Level
}

func main() {
	root := cli.NewCommand(&cli.Program{
		Name:     "influxadm",
		Short:    "Reconcile InfluxDB users and privileges",
		Commands: []func() *cobra.Command{userCmd, privilegeCmd},
	})

	if err := root.Execute(); err != nil {
		writeFailure(os.Stdout, err)
		os.Exit(1)
	}
}

// connectionOpts is the connection parameter surface shared by every
// subcommand.
func connectionOpts() []cli.Opt {
	return []cli.Opt{
		{
			DestP:   &flags.host,
			Flag:    "host",
			Default: "localhost",
			Desc:    "hostname or IP address on which the InfluxDB server is listening",
		},
		{
			DestP:   &flags.port,
			Flag:    "port",
			Default: 8086,
			Desc:    "port on which the InfluxDB server is listening",
		},
		{
			DestP:   &flags.loginUsername,
			Flag:    "login-username",
			Default: "root",
			Desc:    "username used to authenticate against the server",
		},
		{
			DestP:   &flags.loginPassword,
			Flag:    "login-password",
			Default: "root",
			Desc:    "password used to authenticate against the server",
			Secret:  true,
		},
		{
			DestP:   &flags.timeout,
			Flag:    "timeout",
			Default: 5 * time.Second,
			Desc:    "timeout for each request to the server",
		},
		{
			DestP:   &flags.configPath,
			Flag:    "config",
			Default: "",
			Desc:    "path to a TOML connection profile",
		},
		{
			DestP:   &flags.logLevel,
			Flag:    "log-level",
			Default: zapcore.InfoLevel,
			Desc:    "log level written to stderr: debug, info, warn, error",
		},
	}
}

func newLogger() *zap.Logger {
	return logger.New(os.Stderr, flags.logLevel)
}

// newClient builds the server client from the merged connection
// configuration. Nothing is sent to the server here; a bad address fails on
// the first call.
func newClient(cmd *cobra.Command, log *zap.Logger) (*client.Client, error) {
	conf := client.Config{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.loginUsername,
		Password: flags.loginPassword,
		Timeout:  flags.timeout,
	}
	if flags.configPath != "" {
		profile, err := LoadProfile(flags.configPath)
		if err != nil {
			return nil, err
		}
		conf = profile.Merge(conf, cmd.Flags().Changed)
	}
	return client.NewClient(conf, log)
}

// logConfig writes the effective flag values at debug level, redacting the
// ones declared Secret.
func logConfig(cmd *cobra.Command, log *zap.Logger, opts []cli.Opt) {
	secret := cli.SecretFlags(opts)
	fields := make([]zap.Field, 0, cmd.Flags().NFlag())
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if secret[f.Name] {
			fields = append(fields, zap.String(f.Name, "[REDACTED]"))
			return
		}
		fields = append(fields, zap.String(f.Name, f.Value.String()))
	})
	log.Debug("effective configuration", fields...)
}

type result struct {
	Changed bool   `json:"changed"`
	Action  string `json:"action"`
}

type failure struct {
	Failed bool   `json:"failed"`
	Msg    string `json:"msg"`
}

func writeResult(w io.Writer, res reconcile.Result) error {
	return json.NewEncoder(w).Encode(result{
		Changed: res.Changed,
		Action:  res.Action.String(),
	})
}

func writeFailure(w io.Writer, err error) {
	_ = json.NewEncoder(w).Encode(failure{Failed: true, Msg: err.Error()})
}
