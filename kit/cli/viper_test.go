package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewCommand(t *testing.T) {
	t.Setenv("TESTPROGRAM_HOST", "influx.example.com")
	t.Cleanup(viper.Reset)

	var host string
	ran := false
	child := func() *cobra.Command {
		cmd := &cobra.Command{
			Use: "child",
			RunE: func(*cobra.Command, []string) error {
				ran = true
				return nil
			},
		}
		BindOptions(cmd, []Opt{
			{DestP: &host, Flag: "host", Default: "localhost", Desc: "server host"},
		})
		return cmd
	}

	root := NewCommand(&Program{
		Name:     "testprogram",
		Short:    "test program",
		Commands: []func() *cobra.Command{child},
	})

	root.SetArgs([]string{"child"})
	require.NoError(t, root.Execute())
	assert.True(t, ran)
	assert.Equal(t, "influx.example.com", host, "env value overrides the declared default")
}

func TestBindOptions(t *testing.T) {
	var (
		host     string
		port     int
		admin    bool
		timeout  time.Duration
		logLevel zapcore.Level
	)

	cmd := &cobra.Command{Use: "testprogram", RunE: func(*cobra.Command, []string) error { return nil }}
	BindOptions(cmd, []Opt{
		{DestP: &host, Flag: "host", Default: "localhost", Desc: "server host"},
		{DestP: &port, Flag: "port", Default: 8086, Desc: "server port"},
		{DestP: &admin, Flag: "admin", Default: false, Desc: "admin flag"},
		{DestP: &timeout, Flag: "timeout", Default: 5 * time.Second, Desc: "http timeout"},
		{DestP: &logLevel, Flag: "log-level", Default: zapcore.InfoLevel, Desc: "log level"},
	})

	cmd.SetArgs([]string{"--host", "influx.example.com", "--admin", "--log-level", "debug"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "influx.example.com", host)
	assert.Equal(t, 8086, port)
	assert.True(t, admin)
	assert.Equal(t, 5*time.Second, timeout)
	assert.Equal(t, zapcore.DebugLevel, logLevel)
}

func TestBindOptions_Required(t *testing.T) {
	var name string

	cmd := &cobra.Command{Use: "testprogram", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	BindOptions(cmd, []Opt{
		{DestP: &name, Flag: "name", Desc: "user name", Required: true},
	})

	cmd.SetArgs([]string{})
	require.Error(t, cmd.Execute())

	cmd.SetArgs([]string{"--name", "todd"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "todd", name)
}

func TestBindOptions_InvalidLevelEnv(t *testing.T) {
	viper.Set("log-level", "loud")
	t.Cleanup(viper.Reset)

	var level zapcore.Level
	cmd := &cobra.Command{Use: "testprogram", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	BindOptions(cmd, []Opt{
		{DestP: &level, Flag: "log-level", Default: zapcore.InfoLevel, Desc: "log level"},
	})

	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid value "loud" for log-level`)
}

func TestSecretFlags(t *testing.T) {
	var user, pass string
	opts := []Opt{
		{DestP: &user, Flag: "username", Default: "root"},
		{DestP: &pass, Flag: "password", Default: "root", Secret: true},
	}

	secret := SecretFlags(opts)
	assert.True(t, secret["password"])
	assert.False(t, secret["username"])
}
