// Package identity verifies users against external identity providers and
// reduces them to a provider-scoped subject.
package identity

import (
	"errors"
	"strings"
)

var ErrInvalidIdentity = errors.New("invalid external identity")

// External is a user asserted by a provider.
type External struct {
	Provider string
	Subject  string
	Name     string
}

// ID is the value stored in users.external_id.
func (e External) ID() string {
	return e.Provider + ":" + e.Subject
}

func (e External) DisplayName() string {
	if n := strings.TrimSpace(e.Name); n != "" {
		return n
	}
	return e.Provider + " user"
}
