// Package auth gates the admin surface: credential checks, browser
// sessions and API keys for the CLI.
package auth

import (
	"crypto/subtle"
	"strings"
)

// Config holds the admin credentials.
type Config struct {
	AdminEmail    string
	AdminPassword string
	DevMode       bool
}

// Configured reports whether admin credentials are set.
func (c Config) Configured() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// CheckCredentials reports whether email and password match the admin
// account. The email is compared case-insensitively.
func (c Config) CheckCredentials(email, password string) bool {
	if !c.Configured() {
		return false
	}
	emailOK := strings.EqualFold(strings.TrimSpace(email), c.AdminEmail)
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.AdminPassword)) == 1
	return emailOK && passOK
}
