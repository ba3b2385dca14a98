// Package permission abstracts the platform permission service that gates
// BLE scanning. Mobile-grade stacks require runtime grants (scan+connect on
// newer platforms, location on older ones); desktop stacks have no runtime
// broker and grant everything. The scan controller only ever talks to the
// Service interface, so either world plugs in unchanged.
package permission

import "context"

// Well-known permission names, mirroring the platform manifest entries.
const (
	Scan     = "bluetooth.scan"
	Connect  = "bluetooth.connect"
	Location = "location.fine"
)

// Service requests runtime permissions and reports the per-permission
// outcome. A nil map with a nil error means the platform has no runtime
// permission model and everything is implicitly granted.
type Service interface {
	Request(ctx context.Context, perms []string) (map[string]bool, error)
}

// Required returns the permission set a scan needs on this platform.
// Newer stacks use the dedicated scan/connect pair; the legacy location
// permission is only requested where the dedicated pair is unavailable.
func Required() []string {
	return []string{Scan, Connect}
}

// LegacyRequired returns the pre-split permission set for platforms that
// gate BLE discovery behind location access.
func LegacyRequired() []string {
	return []string{Location}
}

// AllGranted reports whether every requested permission was granted.
// An implicit grant (nil map) counts as all granted.
func AllGranted(result map[string]bool) bool {
	for _, granted := range result {
		if !granted {
			return false
		}
	}
	return true
}

// hostService is the desktop implementation: no runtime broker, every
// request succeeds.
type hostService struct{}

// HostService returns the permission service for the current host platform.
func HostService() Service {
	return hostService{}
}

func (hostService) Request(_ context.Context, perms []string) (map[string]bool, error) {
	result := make(map[string]bool, len(perms))
	for _, p := range perms {
		result[p] = true
	}
	return result, nil
}

// Static returns a Service with fixed per-permission outcomes, unlisted
// permissions are denied. Used in tests and for forced-denial debugging.
func Static(grants map[string]bool) Service {
	return staticService{grants: grants}
}

type staticService struct {
	grants map[string]bool
}

func (s staticService) Request(_ context.Context, perms []string) (map[string]bool, error) {
	result := make(map[string]bool, len(perms))
	for _, p := range perms {
		result[p] = s.grants[p]
	}
	return result, nil
}
