package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/influxdata/influxadm/client"
	"github.com/influxdata/influxadm/kit/platform/errors"
)

// Duration is a time.Duration that decodes from a TOML string such as "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Profile is an optional TOML file carrying connection settings, so
// credentials do not have to be passed on the command line of every
// invocation.
//
//	host = "influx.example.com"
//	port = 8086
//	login-username = "admin"
//	login-password = "s3cr3t"
//	timeout = "10s"
type Profile struct {
	Host          string   `toml:"host"`
	Port          int      `toml:"port"`
	LoginUsername string   `toml:"login-username"`
	LoginPassword string   `toml:"login-password"`
	Timeout       Duration `toml:"timeout"`
}

// LoadProfile decodes the profile at path.
func LoadProfile(path string) (Profile, error) {
	var p Profile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return Profile{}, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("loading config %s", path),
			Err:  err,
		}
	}
	return p, nil
}

// Merge fills in conf fields whose flags the invocation left at their
// defaults; an explicitly set flag always wins over the profile.
func (p Profile) Merge(conf client.Config, changed func(string) bool) client.Config {
	if p.Host != "" && !changed("host") {
		conf.Host = p.Host
	}
	if p.Port != 0 && !changed("port") {
		conf.Port = p.Port
	}
	if p.LoginUsername != "" && !changed("login-username") {
		conf.Username = p.LoginUsername
	}
	if p.LoginPassword != "" && !changed("login-password") {
		conf.Password = p.LoginPassword
	}
	if p.Timeout != 0 && !changed("timeout") {
		conf.Timeout = time.Duration(p.Timeout)
	}
	return conf
}
