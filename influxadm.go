// Package influxadm holds the domain types shared by the influxadm
// reconcilers and the InfluxDB client adapter.
package influxadm

import (
	"fmt"
)

// State is the desired presence of a remote record.
type State int

const (
	// Present means the record should exist after reconciliation.
	Present State = iota
	// Absent means the record should not exist after reconciliation.
	Absent
)

// ParseState converts the invocation token into a State.
func ParseState(s string) (State, error) {
	switch s {
	case "present":
		return Present, nil
	case "absent":
		return Absent, nil
	default:
		return 0, fmt.Errorf("invalid state %q; must be present or absent", s)
	}
}

// String returns the invocation token for the state.
func (s State) String() string {
	switch s {
	case Present:
		return "present"
	case Absent:
		return "absent"
	}
	return ""
}
