package gateway

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/lpac-console/internal/urls"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection reset, unreachable host, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request did not complete in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the router refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-2xx HTTP status
	ErrTypeHTTP
	// ErrTypeParse indicates a body that is not a valid envelope
	ErrTypeParse
	// ErrTypeAction indicates the backend answered success=false to an action
	ErrTypeAction
	// ErrTypeValidation indicates user input rejected before any network call
	ErrTypeValidation
	// ErrTypeUnavailable indicates the lpac tool is not installed on the router
	ErrTypeUnavailable
	// ErrTypeReadFailure indicates the backend answered success=false to a read
	ErrTypeReadFailure
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeAction:
		return "Action Failed"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeUnavailable:
		return "lpac Unavailable"
	case ErrTypeReadFailure:
		return "Read Failed"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error represents a failure talking to the lpac backend or a rejected input
type Error struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	Endpoint       Endpoint            // Endpoint involved (if any)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
	Host           string              // Router host (for hints)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a more specific error
func ClassifyNetworkError(err error, host string) *Error {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &Error{
			Type:           ErrTypeTimeout,
			Message:        "Request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Host:           host,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
			Host:           host,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &Error{
				Type:           ErrTypeConnectionRefused,
				Message:        "Router refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Host:           host,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "Host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Host:           host,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "Network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Host:           host,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &Error{
		Type:           ErrTypeNetwork,
		Message:        "Network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Host:           host,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(ep Endpoint, host, message string, err error) *Error {
	classified := ClassifyNetworkError(err, host)
	if classified == nil {
		classified = &Error{Type: ErrTypeNetwork, Host: host}
	}
	classified.Message = message
	classified.Endpoint = ep
	return classified
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(ep Endpoint, statusCode int, message string) *Error {
	return &Error{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Endpoint:   ep,
	}
}

// NewParseError creates a parsing error
func NewParseError(ep Endpoint, message string, err error) *Error {
	return &Error{
		Type:     ErrTypeParse,
		Message:  message,
		Endpoint: ep,
		Err:      err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *Error {
	return &Error{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// NewActionError creates an error for an action the backend refused
func NewActionError(ep Endpoint, message string) *Error {
	return &Error{
		Type:     ErrTypeAction,
		Message:  message,
		Endpoint: ep,
	}
}

// NewReadError creates an error for a read endpoint that answered success=false
func NewReadError(ep Endpoint, message string) *Error {
	return &Error{
		Type:     ErrTypeReadFailure,
		Message:  message,
		Endpoint: ep,
	}
}

// NewUnavailableError creates the error reported while lpac is not installed
func NewUnavailableError() *Error {
	return &Error{
		Type:     ErrTypeUnavailable,
		Message:  "lpac is not installed on the router",
		Endpoint: EndpointCheckLpac,
	}
}

func errorType(err error) (ErrorType, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Type, true
	}
	return ErrTypeUnknown, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	t, ok := errorType(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout || t == ErrTypeConnectionRefused || t == ErrTypeDNS)
}

// IsTransportError reports whether the request never produced a usable envelope
func IsTransportError(err error) bool {
	t, ok := errorType(err)
	return IsNetworkError(err) || (ok && (t == ErrTypeHTTP || t == ErrTypeParse))
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeHTTP
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeParse
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeValidation
}

// IsActionError checks if an error is a backend-refused action
func IsActionError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeAction
}

// IsUnavailableError checks if an error reports a missing lpac install
func IsUnavailableError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeUnavailable
}

// Hint returns user-friendly troubleshooting advice for an error
func Hint(err error) string {
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch gwErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The router did not respond in time.",
			"Troubleshooting:",
			"  • Downloads and notification processing can take minutes; retry with a longer --read-timeout",
			"  • Check that the router is powered on and reachable",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The router refused the connection.",
			"Troubleshooting:",
			"  • Check that uhttpd is running on the router",
			"  • Verify the port in --router (default is 80)",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the router hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Run 'lpac-console scan' to find routers on the local network",
		}, "\n")

	case ErrTypeNetwork:
		hint := []string{"Network communication failed."}
		switch gwErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			hint = append(hint, "The router is not reachable on the network.",
				"Troubleshooting:",
				"  • Verify the router address is correct",
				"  • Try pinging the router: ping "+gwErr.Host)
		case NetworkErrorNetworkUnreachable:
			hint = append(hint, "Your computer cannot reach the router's network.",
				"Troubleshooting:",
				"  • Check your network adapter settings")
		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the router is powered on")
		}
		return strings.Join(hint, "\n")

	case ErrTypeHTTP:
		switch gwErr.StatusCode {
		case 401, 403:
			return strings.Join([]string{
				fmt.Sprintf("The router rejected the request (HTTP %d).", gwErr.StatusCode),
				"Troubleshooting:",
				"  • Log in to LuCI and pass the sysauth cookie with --session",
			}, "\n")
		case 404:
			return strings.Join([]string{
				"The lpac API was not found on the router.",
				"Troubleshooting:",
				"  • Install luci-app-lpac on the router",
				"  • Check --api-path",
				"  • LuCI guide: " + urls.OpenWrtLuCI,
			}, "\n")
		}
		return fmt.Sprintf("The router returned HTTP error %d.", gwErr.StatusCode)

	case ErrTypeParse:
		return strings.Join([]string{
			"Failed to parse the router's response.",
			"Troubleshooting:",
			"  • The session may have expired and LuCI answered with a login page",
			"  • Check that luci-app-lpac is up to date",
		}, "\n")

	case ErrTypeUnavailable:
		return strings.Join([]string{
			"The lpac tool is not installed on the router.",
			"Troubleshooting:",
			"  • Install it with: opkg update && opkg install lpac",
			"  • Project page: " + urls.LpacProject,
		}, "\n")

	case ErrTypeValidation:
		return "The input is invalid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		return err.Error()
	}

	switch gwErr.Type {
	case ErrTypeTimeout:
		return "Router not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Router refused connection"
	case ErrTypeDNS:
		return "Cannot resolve router hostname"
	case ErrTypeNetwork:
		switch gwErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Router unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable"
		default:
			return "Network error - check connection"
		}
	case ErrTypeHTTP:
		if gwErr.Message != "" {
			return fmt.Sprintf("HTTP %d: %s", gwErr.StatusCode, gwErr.Message)
		}
		return fmt.Sprintf("Router error (HTTP %d)", gwErr.StatusCode)
	case ErrTypeParse:
		return "Invalid response from router"
	default:
		return gwErr.Message
	}
}
