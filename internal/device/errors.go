package device

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for scan lifecycle preconditions and backend failures.
// All are recoverable; the controller converts them to an Idle transition
// plus an advisory message, never a crash.
var (
	// ErrPermissionDenied means the platform permission service declined at
	// least one required permission. The user must re-grant via OS settings.
	ErrPermissionDenied = errors.New("bluetooth permission denied")

	// ErrAdapterUnavailable means the adapter is off and could not be
	// enabled on request.
	ErrAdapterUnavailable = errors.New("bluetooth adapter unavailable")

	// ErrScanActive is returned by StartScan while a session is already in
	// progress. The call has no side effects.
	ErrScanActive = errors.New("scan already in progress")

	// ErrBluetoothOff is the normalized form of backend "radio is off"
	// failures.
	ErrBluetoothOff = errors.New("bluetooth is turned off")

	// ErrNotConnected is the normalized form of backend failures caused by
	// operating on a peripheral without an active connection.
	ErrNotConnected = errors.New("device not connected")

	// ErrUnknownPeripheral means the requested peripheral ID has never been
	// discovered by the binding.
	ErrUnknownPeripheral = errors.New("unknown peripheral")
)

// ScanError wraps a failure from one of the scan primitives with the
// operation that produced it ("start", "stop", "poll").
type ScanError struct {
	Op  string
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s failed: %v", e.Op, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// NormalizeError maps known backend error strings to the sentinel errors
// above. It keeps handling consistent even if the upstream library changes
// messages slightly; the original error is preserved via wrapping.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case containsIgnoreCase(msg, "bluetooth is turned off"),
		containsIgnoreCase(msg, "is Bluetooth turned on?"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "device not connected"),
		containsIgnoreCase(msg, "disconnected"):
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	default:
		return err
	}
}

// containsIgnoreCase checks the substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
