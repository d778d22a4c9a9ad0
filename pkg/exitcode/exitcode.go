/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package exitcode provides the process exit codes used by mmdguard.
package exitcode

// Exit codes for the mmdguard CLI. Validation failures and unexpected errors
// share code 1 so CI scripts only need to test for non-zero.
const (
	Success         = 0
	GeneralError    = 1
	ValidationError = 1
	ConfigError     = 2
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "Validation failed or unexpected error"
	case ConfigError:
		return "Configuration error"
	default:
		return "Unknown error"
	}
}
