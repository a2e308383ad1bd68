package gateway

import (
	"strings"
	"testing"
)

func TestParseActivationCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    ActivationCode
		wantErr bool
	}{
		{
			name: "basic",
			code: "LPA:1$smdp.example.com$MATCH1",
			want: ActivationCode{SMDP: "smdp.example.com", MatchingID: "MATCH1"},
		},
		{
			name: "with oid and confirmation flag",
			code: "LPA:1$rsp.example.net$ABC$1.2.3$1",
			want: ActivationCode{SMDP: "rsp.example.net", MatchingID: "ABC", OID: "1.2.3", ConfirmationCodeRequired: true},
		},
		{
			name: "lower case prefix",
			code: "lpa:1$smdp.example.com$",
			want: ActivationCode{SMDP: "smdp.example.com"},
		},
		{name: "empty", code: "  ", wantErr: true},
		{name: "no prefix", code: "1$smdp.example.com$X", wantErr: true},
		{name: "too few parts", code: "LPA:1$smdp.example.com", wantErr: true},
		{name: "wrong format", code: "LPA:2$smdp.example.com$X", wantErr: true},
		{name: "empty smdp", code: "LPA:1$$X", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseActivationCode(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseActivationCode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsValidationError(err) {
					t.Errorf("error %v should be a validation error", err)
				}
				return
			}
			if *got != tt.want {
				t.Errorf("ParseActivationCode() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestValidateIMEI(t *testing.T) {
	tests := []struct {
		imei    string
		wantErr bool
	}{
		{"", false},
		{"356938035643809", false},
		{"35693803564380", true},
		{"3569380356438091", true},
		{"35693803564380A", true},
	}
	for _, tt := range tests {
		if err := ValidateIMEI(tt.imei); (err != nil) != tt.wantErr {
			t.Errorf("ValidateIMEI(%q) error = %v, wantErr %v", tt.imei, err, tt.wantErr)
		}
	}
}

func TestValidateNickname(t *testing.T) {
	tests := []struct {
		name     string
		nickname string
		wantErr  string
	}{
		{"ok", "Work SIM", ""},
		{"empty", "", "Nickname cannot be empty"},
		{"whitespace only", "   ", "Nickname cannot be empty"},
		{"max length", strings.Repeat("a", MaxNicknameLength), ""},
		{"too long", strings.Repeat("a", MaxNicknameLength+1), "too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNickname(tt.nickname)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateNickname() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(ShortMessage(err), tt.wantErr) {
				t.Errorf("ValidateNickname() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSMDP(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"smdp.example.com", false},
		{"", true},
		{"smdp example.com", true},
		{"https://smdp.example.com", true},
		{strings.Repeat("a", 254), true},
	}
	for _, tt := range tests {
		if err := ValidateSMDP(tt.addr); (err != nil) != tt.wantErr {
			t.Errorf("ValidateSMDP(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
		}
	}
}

func TestDownloadRequest(t *testing.T) {
	tests := []struct {
		name        string
		req         DownloadRequest
		wantErr     string
		wantPayload map[string]any
	}{
		{
			name:        "activation code",
			req:         DownloadRequest{ActivationCode: " LPA:1$smdp.example.com$MATCH1 "},
			wantPayload: map[string]any{"activation_code": "LPA:1$smdp.example.com$MATCH1"},
		},
		{
			name:    "activation code missing",
			req:     DownloadRequest{},
			wantErr: "Activation code is required",
		},
		{
			name:    "manual without smdp",
			req:     DownloadRequest{Mode: DownloadManual, MatchingID: "X"},
			wantErr: "SM-DP+ address is required",
		},
		{
			name:    "manual with bad imei",
			req:     DownloadRequest{Mode: DownloadManual, SMDP: "smdp.example.com", IMEI: "123"},
			wantErr: "IMEI must be 15 digits",
		},
		{
			name: "manual full",
			req: DownloadRequest{
				Mode: DownloadManual, SMDP: "smdp.example.com", MatchingID: "M1",
				ConfirmationCode: "1234", IMEI: "356938035643809",
			},
			wantPayload: map[string]any{
				"smdp": "smdp.example.com", "matching_id": "M1",
				"confirmation_code": "1234", "imei": "356938035643809",
			},
		},
		{
			name:        "manual minimal omits optional fields",
			req:         DownloadRequest{Mode: DownloadManual, SMDP: "smdp.example.com"},
			wantPayload: map[string]any{"smdp": "smdp.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(ShortMessage(err), tt.wantErr) {
					t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			got := tt.req.Payload()
			if len(got) != len(tt.wantPayload) {
				t.Fatalf("Payload() = %v, want %v", got, tt.wantPayload)
			}
			for k, v := range tt.wantPayload {
				if got[k] != v {
					t.Errorf("Payload()[%s] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestDownloadRequestTarget(t *testing.T) {
	req := DownloadRequest{ActivationCode: "LPA:1$smdp.example.com$MATCH1"}
	if got := req.Target(); got != "smdp.example.com" {
		t.Errorf("Target() = %q", got)
	}
	req = DownloadRequest{Mode: DownloadManual, SMDP: "rsp.example.net"}
	if got := req.Target(); got != "rsp.example.net" {
		t.Errorf("Target() = %q", got)
	}
}
