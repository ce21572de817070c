// Package env provides the identity and configuration shared by binaries.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
)

// AppID keys the protected machine ID.
const AppID = "keylight"

// ControllerID returns a short ID for topics: the first 12 digits of the
// machine ID hashed with AppID, or the host name when no machine ID is
// available.
func ControllerID() string {
	if id, err := machineid.ProtectedID(AppID); err == nil && len(id) >= 12 {
		return id[:12]
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return AppID
}
