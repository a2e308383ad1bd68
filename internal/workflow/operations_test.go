package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/muurk/lpac-console/internal/gateway"
)

func TestToggleProfile(t *testing.T) {
	if got := ToggleProfile(enabledProfile).Endpoint; got != gateway.EndpointDisableProfile {
		t.Errorf("ToggleProfile(enabled) = %s, want disable_profile", got)
	}
	if got := ToggleProfile(disabledProfile).Endpoint; got != gateway.EndpointEnableProfile {
		t.Errorf("ToggleProfile(disabled) = %s, want enable_profile", got)
	}
}

func TestDownloadProfile(t *testing.T) {
	t.Run("invalid request creates no operation", func(t *testing.T) {
		tests := []gateway.DownloadRequest{
			{},
			{Mode: gateway.DownloadManual},
			{Mode: gateway.DownloadManual, SMDP: "https://rsp.example.com"},
			{Mode: gateway.DownloadManual, SMDP: "rsp.example.com", IMEI: "1234"},
		}
		for _, req := range tests {
			if _, err := DownloadProfile(req); !gateway.IsValidationError(err) {
				t.Errorf("DownloadProfile(%+v) error = %v, want validation error", req, err)
			}
		}
	})

	t.Run("success reports the installed iccid and reloads", func(t *testing.T) {
		op, err := DownloadProfile(gateway.DownloadRequest{ActivationCode: " LPA:1$rsp.example.com$ABC123 "})
		if err != nil {
			t.Fatal(err)
		}
		want := map[string]any{"activation_code": "LPA:1$rsp.example.com$ABC123"}
		if !reflect.DeepEqual(op.Payload, want) {
			t.Errorf("Payload = %v, want %v", op.Payload, want)
		}

		poster := &fakePoster{env: gateway.Envelope{Success: true, Data: json.RawMessage(`{"iccid":"8944110000000000099"}`)}}
		reloader := &countingReloader{}
		fb := &scriptedFeedback{answers: []Answer{yes}}

		out := NewController(poster).Run(context.Background(), op, fb, reloader)

		if !out.Succeeded() {
			t.Fatalf("State = %v (%v)", out.State, out.Err)
		}
		if out.Message != "Profile downloaded successfully" {
			t.Errorf("Message = %q", out.Message)
		}
		wantDetails := []Detail{{Label: "ICCID", Value: "8944110000000000099"}}
		if !reflect.DeepEqual(out.Details, wantDetails) {
			t.Errorf("Details = %v, want %v", out.Details, wantDetails)
		}
		if reloader.calls() != 1 {
			t.Errorf("Reload called %d times, want 1", reloader.calls())
		}
	})

	t.Run("manual payload", func(t *testing.T) {
		op, err := DownloadProfile(gateway.DownloadRequest{
			Mode:       gateway.DownloadManual,
			SMDP:       "rsp.example.com",
			MatchingID: "ABC123",
		})
		if err != nil {
			t.Fatal(err)
		}
		want := map[string]any{"smdp": "rsp.example.com", "matching_id": "ABC123"}
		if !reflect.DeepEqual(op.Payload, want) {
			t.Errorf("Payload = %v, want %v", op.Payload, want)
		}
	})
}

func TestProcessNotificationRemoveOption(t *testing.T) {
	n := gateway.Notification{SeqNumber: 7, Operation: "install", Address: "rsp.example.com"}

	tests := []struct {
		name   string
		option bool
	}{
		{"keep after processing", false},
		{"remove after processing", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poster := &fakePoster{env: gateway.Envelope{Success: true}}
			fb := &scriptedFeedback{answers: []Answer{{Accepted: true, Option: tt.option}}}

			NewController(poster).Run(context.Background(), ProcessNotification(n, true), fb, nil)

			if poster.callCount() != 1 {
				t.Fatalf("Post called %d times", poster.callCount())
			}
			got := poster.calls[0].Payload
			if got["seq_number"] != 7 || got["remove"] != tt.option {
				t.Errorf("payload = %v", got)
			}
			if !fb.prompts[0].Option.Default {
				t.Error("prompt should default to removing")
			}
		})
	}
}

func TestBulkNotifications(t *testing.T) {
	constructors := map[string]func(int) (Operation, error){
		"process all": ProcessAllNotifications,
		"remove all":  RemoveAllNotifications,
	}
	for name, build := range constructors {
		t.Run(name, func(t *testing.T) {
			if _, err := build(0); !errors.Is(err, ErrNothingPending) {
				t.Errorf("count 0 error = %v, want ErrNothingPending", err)
			}
			op, err := build(3)
			if err != nil {
				t.Fatal(err)
			}
			if op.Kind != KindBulk {
				t.Errorf("Kind = %v, want bulk", op.Kind)
			}
			if len(op.Payload) != 0 {
				t.Errorf("Payload = %v, want empty", op.Payload)
			}
			if op.Prompt.Details[0].Value != "3" {
				t.Errorf("prompt count = %q", op.Prompt.Details[0].Value)
			}
		})
	}
}

func TestDiscoverProfilesDoesNotReload(t *testing.T) {
	poster := &fakePoster{env: gateway.Envelope{Success: true, Data: json.RawMessage(`{"profiles":["rsp.one.example","rsp.two.example"]}`)}}
	reloader := &countingReloader{}

	out := NewController(poster).Run(context.Background(), DiscoverProfiles(), &scriptedFeedback{answers: []Answer{yes}}, reloader)

	if !out.Succeeded() {
		t.Fatalf("State = %v", out.State)
	}
	if reloader.calls() != 0 {
		t.Error("discovery should not reload the view")
	}
	if len(out.Details) != 3 || out.Details[0].Value != "2 available profile(s)" {
		t.Errorf("Details = %v", out.Details)
	}
}

func TestSaveSettingsAppliesDefaults(t *testing.T) {
	op := SaveSettings(gateway.Settings{gateway.SettingHTTPDriver: "curl"})

	want := map[string]any{
		gateway.SettingAPDUDriver:  gateway.DriverAuto,
		gateway.SettingHTTPDriver:  "curl",
		gateway.SettingDefaultSMDP: "",
	}
	if !reflect.DeepEqual(op.Payload, want) {
		t.Errorf("Payload = %v, want %v", op.Payload, want)
	}
	if len(op.Prompt.Details) != 3 || op.Prompt.Details[0].Label != gateway.SettingAPDUDriver {
		t.Errorf("prompt details = %v", op.Prompt.Details)
	}
}

func TestAcceptDoesNotMutateTemplatePayload(t *testing.T) {
	op := RenameProfile(enabledProfile)
	c := NewController(&fakePoster{env: gateway.Envelope{Success: true}})
	if err := c.Begin(op); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Accept(Answer{Accepted: true, Text: "Home"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := op.Payload["nickname"]; ok {
		t.Error("Accept wrote into the caller's payload")
	}
}
