package gateway

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxNicknameLength is the longest nickname the backend accepts
const MaxNicknameLength = 64

// ActivationCodePrefix starts every LPA activation code
const ActivationCodePrefix = "LPA:"

// ActivationCode is the parsed form of "LPA:1$<smdp>$<matching id>[$<oid>[$<cc flag>]]"
type ActivationCode struct {
	SMDP                     string
	MatchingID               string
	OID                      string
	ConfirmationCodeRequired bool
}

// ParseActivationCode splits an activation code into its fields
func ParseActivationCode(code string) (*ActivationCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, NewValidationError("Activation code is required")
	}
	if !strings.HasPrefix(strings.ToUpper(code), ActivationCodePrefix) {
		return nil, NewValidationError(fmt.Sprintf("activation code must start with %q", ActivationCodePrefix))
	}

	parts := strings.Split(code[len(ActivationCodePrefix):], "$")
	if len(parts) < 3 {
		return nil, NewValidationError("activation code must look like LPA:1$<SM-DP+ address>$<matching ID>")
	}
	if parts[0] != "1" {
		return nil, NewValidationError(fmt.Sprintf("unsupported activation code format %q", parts[0]))
	}
	if err := ValidateSMDP(parts[1]); err != nil {
		return nil, err
	}

	ac := &ActivationCode{SMDP: parts[1], MatchingID: parts[2]}
	if len(parts) > 3 {
		ac.OID = parts[3]
	}
	if len(parts) > 4 {
		ac.ConfirmationCodeRequired = parts[4] == "1"
	}
	return ac, nil
}

// ValidateSMDP validates an SM-DP+ server address
func ValidateSMDP(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return NewValidationError("SM-DP+ address is required")
	}
	if len(addr) > 253 {
		return NewValidationError(fmt.Sprintf("SM-DP+ address too long (max 253 chars): %d chars", len(addr)))
	}
	if strings.ContainsFunc(addr, unicode.IsSpace) {
		return NewValidationError("SM-DP+ address cannot contain spaces")
	}
	if strings.Contains(addr, "://") {
		return NewValidationError("SM-DP+ address must be a hostname, without a scheme")
	}
	return nil
}

// ValidateIMEI validates an optional IMEI. Empty is allowed.
func ValidateIMEI(imei string) error {
	if imei == "" {
		return nil
	}
	if len(imei) != 15 {
		return NewValidationError(fmt.Sprintf("IMEI must be 15 digits, got %d", len(imei)))
	}
	if _, err := strconv.ParseUint(imei, 10, 64); err != nil {
		return NewValidationError("IMEI must contain digits only")
	}
	return nil
}

// ValidateNickname validates a profile nickname
func ValidateNickname(nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return NewValidationError("Nickname cannot be empty")
	}
	if len([]rune(nickname)) > MaxNicknameLength {
		return NewValidationError(fmt.Sprintf("Nickname too long (max %d chars)", MaxNicknameLength))
	}
	return nil
}

// ValidateICCID checks that an ICCID was given
func ValidateICCID(iccid string) error {
	if strings.TrimSpace(iccid) == "" {
		return NewValidationError("ICCID is required")
	}
	return nil
}

// DownloadMode selects how a download is described
type DownloadMode int

const (
	// DownloadByActivationCode sends a single LPA activation code
	DownloadByActivationCode DownloadMode = iota
	// DownloadManual sends the SM-DP+ address and optional fields separately
	DownloadManual
)

// DownloadRequest describes a profile download, either by activation code
// or by manually entered SM-DP+ address and matching ID.
type DownloadRequest struct {
	Mode             DownloadMode
	ActivationCode   string
	SMDP             string
	MatchingID       string
	ConfirmationCode string
	IMEI             string
}

// Manual reports whether the request uses the manual fields
func (r DownloadRequest) Manual() bool {
	return r.Mode == DownloadManual
}

// Validate checks the request before anything is sent
func (r DownloadRequest) Validate() error {
	if !r.Manual() {
		// lpac parses the code itself; only presence is checked here
		if strings.TrimSpace(r.ActivationCode) == "" {
			return NewValidationError("Activation code is required")
		}
		return nil
	}
	if err := ValidateSMDP(r.SMDP); err != nil {
		return err
	}
	return ValidateIMEI(strings.TrimSpace(r.IMEI))
}

// Payload returns the download_profile request body. Optional manual fields
// are only sent when set.
func (r DownloadRequest) Payload() map[string]any {
	if !r.Manual() {
		return map[string]any{"activation_code": strings.TrimSpace(r.ActivationCode)}
	}

	payload := map[string]any{"smdp": strings.TrimSpace(r.SMDP)}
	if v := strings.TrimSpace(r.MatchingID); v != "" {
		payload["matching_id"] = v
	}
	if v := strings.TrimSpace(r.ConfirmationCode); v != "" {
		payload["confirmation_code"] = v
	}
	if v := strings.TrimSpace(r.IMEI); v != "" {
		payload["imei"] = v
	}
	return payload
}

// Target returns a short description of where the profile comes from
func (r DownloadRequest) Target() string {
	if !r.Manual() {
		if ac, err := ParseActivationCode(r.ActivationCode); err == nil {
			return ac.SMDP
		}
		return strings.TrimSpace(r.ActivationCode)
	}
	return strings.TrimSpace(r.SMDP)
}
