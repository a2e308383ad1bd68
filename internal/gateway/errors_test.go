package gateway

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantType    ErrorType
		wantSubtype NetworkErrorSubtype
	}{
		{
			name: "timeout",
			err: &url.Error{Op: "Get", URL: "http://192.168.1.1", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: &timeoutError{},
			}},
			wantType:    ErrTypeTimeout,
			wantSubtype: NetworkErrorTimeout,
		},
		{
			name: "connection refused",
			err: &url.Error{Op: "Get", URL: "http://192.168.1.1", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED,
			}},
			wantType:    ErrTypeConnectionRefused,
			wantSubtype: NetworkErrorConnectionRefused,
		},
		{
			name:        "dns",
			err:         &net.DNSError{Err: "no such host", Name: "openwrt.lan", IsNotFound: true},
			wantType:    ErrTypeDNS,
			wantSubtype: NetworkErrorDNS,
		},
		{
			name:        "host unreachable",
			err:         &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH},
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorHostUnreachable,
		},
		{
			name:        "network unreachable",
			err:         &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ENETUNREACH},
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorNetworkUnreachable,
		},
		{
			name:        "generic",
			err:         errors.New("connection reset by peer"),
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err, "192.168.1.1")
			if got == nil {
				t.Fatal("ClassifyNetworkError() = nil")
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", got.NetworkSubtype, tt.wantSubtype)
			}
			if got.Host != "192.168.1.1" {
				t.Errorf("Host = %q, want 192.168.1.1", got.Host)
			}
		})
	}

	if ClassifyNetworkError(nil, "x") != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestErrorPredicates(t *testing.T) {
	network := NewNetworkError(EndpointListProfiles, "r", "GET failed", syscall.ECONNRESET)
	httpErr := NewHTTPError(EndpointListProfiles, 500, "Internal Server Error")
	parse := NewParseError(EndpointListProfiles, "bad body", errors.New("eof"))
	validation := NewValidationError("Nickname cannot be empty")
	action := NewActionError(EndpointEnableProfile, "profile busy")
	unavailable := NewUnavailableError()

	tests := []struct {
		name string
		fn   func(error) bool
		yes  []error
		no   []error
	}{
		{"IsNetworkError", IsNetworkError, []error{network}, []error{httpErr, parse, validation, action}},
		{"IsTransportError", IsTransportError, []error{network, httpErr, parse}, []error{validation, action, unavailable}},
		{"IsHTTPError", IsHTTPError, []error{httpErr}, []error{network, parse}},
		{"IsParseError", IsParseError, []error{parse}, []error{httpErr}},
		{"IsValidationError", IsValidationError, []error{validation, fmt.Errorf("rename: %w", validation)}, []error{action}},
		{"IsActionError", IsActionError, []error{action}, []error{validation, errors.New("plain")}},
		{"IsUnavailableError", IsUnavailableError, []error{unavailable}, []error{action}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, err := range tt.yes {
				if !tt.fn(err) {
					t.Errorf("%s(%v) = false, want true", tt.name, err)
				}
			}
			for _, err := range tt.no {
				if tt.fn(err) {
					t.Errorf("%s(%v) = true, want false", tt.name, err)
				}
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := NewParseError(EndpointChipInfo, "invalid response", errors.New("unexpected EOF"))
	want := "Parse Error: invalid response (caused by: unexpected EOF)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = NewActionError(EndpointFactoryReset, "chip locked")
	if err.Error() != "Action Failed: chip locked" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestShortMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", &Error{Type: ErrTypeTimeout}, "Router not responding (timeout)"},
		{"refused", &Error{Type: ErrTypeConnectionRefused}, "Router refused connection"},
		{"http with message", NewHTTPError(EndpointGetConfig, 403, "Forbidden"), "HTTP 403: Forbidden"},
		{"http without message", NewHTTPError(EndpointGetConfig, 502, ""), "Router error (HTTP 502)"},
		{"parse", NewParseError(EndpointGetConfig, "x", nil), "Invalid response from router"},
		{"action keeps server text", NewActionError(EndpointDeleteProfile, "profile is enabled"), "profile is enabled"},
		{"validation", NewValidationError("IMEI must be 15 digits, got 3"), "IMEI must be 15 digits, got 3"},
		{"foreign error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortMessage(tt.err); got != tt.want {
				t.Errorf("ShortMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		err      error
		contains string
	}{
		{NewUnavailableError(), "opkg install lpac"},
		{NewHTTPError(EndpointListProfiles, 403, ""), "--session"},
		{NewHTTPError(EndpointListProfiles, 404, ""), "luci-app-lpac"},
		{&Error{Type: ErrTypeNetwork, NetworkSubtype: NetworkErrorHostUnreachable, Host: "10.0.0.1"}, "ping 10.0.0.1"},
		{errors.New("other"), "unexpected error"},
	}

	for _, tt := range tests {
		if got := Hint(tt.err); !strings.Contains(got, tt.contains) {
			t.Errorf("Hint(%v) = %q, want it to contain %q", tt.err, got, tt.contains)
		}
	}
}
