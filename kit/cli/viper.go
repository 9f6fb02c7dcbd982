package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Opt is a single command-line option. Every option influxadm accepts is
// declared as one of these so its default, required, and secret status is
// visible in one place.
type Opt struct {
	DestP    interface{} // pointer to the destination
	Flag     string
	Default  interface{}
	Desc     string
	Required bool
	Secret   bool // value must never be logged
}

// Program describes the root command of a CLI.
type Program struct {
	// Name is the name of the program in help usage and the env var prefix.
	Name string
	// Short is the one-line description shown in help output.
	Short string
	// Opts are the command line/env var options bound on the root command.
	Opts []Opt
	// Commands build the subcommands. They run after the env prefix is
	// configured, so their own BindOptions calls see env values.
	Commands []func() *cobra.Command
}

// NewCommand creates the root cobra command for p. Option values resolve in
// precedence order: explicit flag, environment variable, declared default.
//
// Uses the upper-case version of the program's name as a prefix to all
// environment variables.
func NewCommand(p *Program) *cobra.Command {
	cmd := &cobra.Command{
		Use:           p.Name,
		Short:         p.Short,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	viper.SetEnvPrefix(strings.ToUpper(p.Name))
	viper.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	BindOptions(cmd, p.Opts)
	for _, build := range p.Commands {
		cmd.AddCommand(build())
	}

	return cmd
}

// BindOptions adds opts to the specified command and automatically registers
// those options with viper. Required options are marked required on the
// command so cobra rejects an invocation before any of its work runs.
func BindOptions(cmd *cobra.Command, opts []Opt) {
	var envErr error
	for _, o := range opts {
		switch destP := o.DestP.(type) {
		case *string:
			var d string
			if o.Default != nil {
				d = o.Default.(string)
			}
			cmd.Flags().StringVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(o.Flag, cmd)
			*destP = viper.GetString(o.Flag)
		case *int:
			var d int
			if o.Default != nil {
				d = o.Default.(int)
			}
			cmd.Flags().IntVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(o.Flag, cmd)
			*destP = viper.GetInt(o.Flag)
		case *bool:
			var d bool
			if o.Default != nil {
				d = o.Default.(bool)
			}
			cmd.Flags().BoolVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(o.Flag, cmd)
			*destP = viper.GetBool(o.Flag)
		case *time.Duration:
			var d time.Duration
			if o.Default != nil {
				d = o.Default.(time.Duration)
			}
			cmd.Flags().DurationVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(o.Flag, cmd)
			*destP = viper.GetDuration(o.Flag)
		case *zapcore.Level:
			var d zapcore.Level
			if o.Default != nil {
				d = o.Default.(zapcore.Level)
			}
			levelVar(cmd.Flags(), destP, o.Flag, d, o.Desc)
			mustBindPFlag(o.Flag, cmd)
			if s := viper.GetString(o.Flag); s != "" {
				if err := destP.Set(s); err != nil {
					envErr = fmt.Errorf("invalid value %q for %s: %w", s, o.Flag, err)
				}
			}
		default:
			panic(fmt.Errorf("unknown destination type %t", o.DestP))
		}

		if o.Required {
			if err := cmd.MarkFlagRequired(o.Flag); err != nil {
				panic(err)
			}
		}
	}

	// A malformed env value is the caller's input, not a programming error;
	// fail the invocation instead of panicking here.
	if envErr != nil {
		cmd.PreRunE = func(*cobra.Command, []string) error {
			return envErr
		}
	}
}

// SecretFlags returns the names of the secret flags in opts. The caller uses
// it to redact values before logging effective configuration.
func SecretFlags(opts []Opt) map[string]bool {
	secret := make(map[string]bool)
	for _, o := range opts {
		if o.Secret {
			secret[o.Flag] = true
		}
	}
	return secret
}

func mustBindPFlag(key string, cmd *cobra.Command) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
		panic(err)
	}
}

type levelValue zapcore.Level

func newLevelValue(val zapcore.Level, p *zapcore.Level) *levelValue {
	*p = val
	return (*levelValue)(p)
}

func (l *levelValue) String() string {
	return zapcore.Level(*l).String()
}

func (l *levelValue) Set(s string) error {
	var level zapcore.Level
	if err := level.Set(s); err != nil {
		return fmt.Errorf("unknown log level; supported levels are debug, info, warn, error")
	}
	*l = levelValue(level)
	return nil
}

func (l *levelValue) Type() string {
	return "Log-Level"
}

// levelVar defines a zapcore.Level flag with the specified name, default
// value, and usage string.
func levelVar(fs *pflag.FlagSet, p *zapcore.Level, name string, value zapcore.Level, usage string) {
	fs.Var(newLevelValue(value, p), name, usage)
}
