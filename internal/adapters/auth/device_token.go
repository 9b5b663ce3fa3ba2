// Package auth orchestrates the login state machine: cached-session
// validation, password login with MFA and device-challenge resolution,
// the refresh-grant variant, and logout.
package auth

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateDeviceToken returns a fresh 16-byte device token rendered as
// four dash-separated groups of eight hex digits. A new token is
// generated per login attempt.
func GenerateDeviceToken() string {
	raw := uuid.New()
	return fmt.Sprintf("%x-%x-%x-%x", raw[0:4], raw[4:8], raw[8:12], raw[12:16])
}
