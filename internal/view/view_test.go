package view

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
)

type staticGetter map[gateway.Endpoint]string

func (g staticGetter) Get(ctx context.Context, ep gateway.Endpoint) (gateway.Envelope, error) {
	body, ok := g[ep]
	if !ok {
		return gateway.Envelope{}, gateway.NewHTTPError(ep, 404, "Not Found")
	}
	return gateway.DecodeEnvelope([]byte(body))
}

const (
	installed    = `{"success":true,"data":{"installed":true}}`
	notInstalled = `{"success":true,"data":{"installed":false}}`
	twoProfiles  = `{"success":true,"data":{"profiles":[
		{"iccid":"8944110000000000001","profileNickname":"Work","profileState":"enabled"},
		{"iccid":"8944110000000000002","profileName":"Travel","profileState":"disabled"}]}}`
	noProfiles = `{"success":true,"data":{"profiles":[]}}`
	threeNotes = `{"success":true,"data":{"notifications":[
		{"seqNumber":1,"notificationOperation":"install","notificationAddress":"a"},
		{"seqNumber":2,"notificationOperation":"enable","notificationAddress":"a"},
		{"seqNumber":3,"notificationOperation":"delete","notificationAddress":"b"}]}}`
	noNotes = `{"success":true,"data":{"notifications":[]}}`
)

func load(t *testing.T, v loader.View, g staticGetter) *loader.Snapshot {
	t.Helper()
	return loader.New(g).Load(context.Background(), v)
}

func TestSelectBranch(t *testing.T) {
	tests := []struct {
		name string
		view loader.View
		g    staticGetter
		want Branch
	}{
		{
			name: "unavailable wins over error",
			view: loader.Profiles,
			g:    staticGetter{gateway.EndpointCheckLpac: notInstalled, gateway.EndpointListProfiles: `{"success":false}`},
			want: BranchUnavailable,
		},
		{
			name: "unavailable wins over empty",
			view: loader.Notifications,
			g:    staticGetter{gateway.EndpointCheckLpac: notInstalled, gateway.EndpointListNotifications: noNotes},
			want: BranchUnavailable,
		},
		{
			name: "error wins over empty",
			view: loader.Profiles,
			g:    staticGetter{gateway.EndpointCheckLpac: installed, gateway.EndpointListProfiles: `{"success":false,"message":"no card"}`},
			want: BranchError,
		},
		{
			name: "transport failure of the primary read",
			view: loader.Chip,
			g:    staticGetter{gateway.EndpointCheckLpac: installed},
			want: BranchError,
		},
		{
			name: "empty profiles",
			view: loader.Profiles,
			g:    staticGetter{gateway.EndpointCheckLpac: installed, gateway.EndpointListProfiles: noProfiles},
			want: BranchEmpty,
		},
		{
			name: "empty notifications",
			view: loader.Notifications,
			g:    staticGetter{gateway.EndpointCheckLpac: installed, gateway.EndpointListNotifications: noNotes},
			want: BranchEmpty,
		},
		{
			name: "empty chip info",
			view: loader.Chip,
			g:    staticGetter{gateway.EndpointCheckLpac: installed, gateway.EndpointChipInfo: `{"success":true,"data":{}}`},
			want: BranchEmpty,
		},
		{
			name: "ready profiles",
			view: loader.Profiles,
			g:    staticGetter{gateway.EndpointCheckLpac: installed, gateway.EndpointListProfiles: twoProfiles},
			want: BranchReady,
		},
		{
			name: "download has no primary read",
			view: loader.Download,
			g:    staticGetter{gateway.EndpointCheckLpac: installed},
			want: BranchReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := SelectBranch(load(t, tt.view, tt.g))
			if sel.Branch != tt.want {
				t.Errorf("SelectBranch() = %v, want %v", sel.Branch, tt.want)
			}
			if tt.want != BranchReady && sel.Title == "" {
				t.Error("non-ready branch should carry a title")
			}
		})
	}
}

func TestSelectBranchErrorMessage(t *testing.T) {
	sel := SelectBranch(load(t, loader.Profiles, staticGetter{
		gateway.EndpointCheckLpac:    installed,
		gateway.EndpointListProfiles: `{"success":false,"message":"no card"}`,
	}))
	if sel.Title != "Failed to Load Profiles" || sel.Message != "no card" {
		t.Errorf("Selection = %+v", sel)
	}
}

func TestProfileActionsMatchState(t *testing.T) {
	snap := load(t, loader.Profiles, staticGetter{
		gateway.EndpointCheckLpac:    installed,
		gateway.EndpointListProfiles: twoProfiles,
	})

	tests := []struct {
		index  int
		want   Action
		absent Action
	}{
		{0, ActionDisable, ActionEnable},
		{1, ActionEnable, ActionDisable},
	}
	for _, tt := range tests {
		controls := ItemActions(snap, tt.index)
		var found, other int
		for _, c := range controls {
			switch c.Action {
			case tt.want:
				found++
			case tt.absent:
				other++
			}
		}
		if found != 1 || other != 0 {
			t.Errorf("profile %d controls = %+v, want exactly one %s and no %s", tt.index, controls, tt.want, tt.absent)
		}
	}

	if got := ItemActions(snap, 2); got != nil {
		t.Errorf("ItemActions() out of range = %v", got)
	}
	if Items(snap) != 2 {
		t.Errorf("Items() = %d, want 2", Items(snap))
	}
}

func TestUnavailableOffersNoControls(t *testing.T) {
	for _, v := range loader.Views() {
		if !v.RequiresLpac {
			continue
		}
		t.Run(v.Name, func(t *testing.T) {
			snap := load(t, v, staticGetter{
				gateway.EndpointCheckLpac:         notInstalled,
				gateway.EndpointListProfiles:      twoProfiles,
				gateway.EndpointListNotifications: threeNotes,
				gateway.EndpointGetConfig:         `{"success":true,"data":{}}`,
			})
			if got := Actions(snap); len(got) != 0 {
				t.Errorf("Actions() = %v, want none", got)
			}
			for i := 0; i < 3; i++ {
				if got := ItemActions(snap, i); len(got) != 0 {
					t.Errorf("ItemActions(%d) = %v, want none", i, got)
				}
			}
			if Items(snap) != 0 {
				t.Errorf("Items() = %d, want 0", Items(snap))
			}
		})
	}
}

func TestSettingsReadFailureKeepsControls(t *testing.T) {
	snap := load(t, loader.Settings, staticGetter{
		gateway.EndpointCheckLpac:       installed,
		gateway.EndpointGetConfig:       `{"success":false,"message":"uci read failed"}`,
		gateway.EndpointListAPDUDrivers: `{"success":true,"data":{"drivers":["pcsc","at"]}}`,
		gateway.EndpointListHTTPDrivers: `{"success":true,"data":{"drivers":["curl"]}}`,
	})

	if got := SelectBranch(snap).Branch; got != BranchReady {
		t.Fatalf("branch = %v, want ready", got)
	}
	for _, want := range []Action{ActionSaveSettings, ActionDiscover, ActionFactoryReset} {
		found := false
		for _, c := range Actions(snap) {
			if c.Action == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Actions() is missing %s", want)
		}
	}

	secs := Sections(snap)
	if len(secs) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(secs))
	}
	if secs[0].Rows[0].Value != gateway.DriverAuto {
		t.Errorf("APDU Driver = %q, want the auto default", secs[0].Rows[0].Value)
	}
	if !strings.Contains(secs[0].Note, "uci read failed") {
		t.Errorf("Note = %q, want the read error", secs[0].Note)
	}
}

func TestBulkNotificationActions(t *testing.T) {
	if got := BulkNotificationActions(0); got != nil {
		t.Errorf("BulkNotificationActions(0) = %v, want none", got)
	}

	empty := load(t, loader.Notifications, staticGetter{
		gateway.EndpointCheckLpac:         installed,
		gateway.EndpointListNotifications: noNotes,
	})
	if SelectBranch(empty).Branch != BranchEmpty {
		t.Errorf("branch = %v, want empty", SelectBranch(empty).Branch)
	}
	if _, ok := Lookup(Actions(empty), "X"); ok {
		t.Error("Remove All offered for an empty list")
	}

	full := load(t, loader.Notifications, staticGetter{
		gateway.EndpointCheckLpac:         installed,
		gateway.EndpointListNotifications: threeNotes,
	})
	c, ok := Lookup(Actions(full), "X")
	if !ok || c.Action != ActionRemoveAll || !c.Destructive {
		t.Errorf("Lookup(X) = %+v, %v", c, ok)
	}
}

func TestFormatMemory(t *testing.T) {
	tests := []struct {
		kb   int
		want string
	}{
		{0, "0 KB"},
		{512, "512 KB"},
		{1023, "1023 KB"},
		{1024, "1.0 MB"},
		{1536, "1.5 MB"},
		{10342, "10.1 MB"},
	}
	for _, tt := range tests {
		if got := FormatMemory(tt.kb); got != tt.want {
			t.Errorf("FormatMemory(%d) = %q, want %q", tt.kb, got, tt.want)
		}
	}
}

func TestBadges(t *testing.T) {
	if b := ChipStatusBadge("connected"); b.Text != "Connected" || b.Tone != ToneSuccess {
		t.Errorf("ChipStatusBadge(connected) = %+v", b)
	}
	if b := ChipStatusBadge(""); b.Text != "Disconnected" || b.Tone != ToneDanger {
		t.Errorf("ChipStatusBadge(\"\") = %+v", b)
	}
	if b := ProfileBadge(gateway.Profile{State: gateway.ProfileEnabled}); b.Text != "Enabled" {
		t.Errorf("ProfileBadge(enabled) = %+v", b)
	}
	if b := NotificationsBadge(2); b.Tone != ToneWarning {
		t.Errorf("NotificationsBadge(2) = %+v", b)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"8944110000000000001", 8, "8944110…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestDriverOptions(t *testing.T) {
	tests := []struct {
		name     string
		drivers  []string
		current  string
		want     []string
		selected string
	}{
		{"known driver", []string{"pcsc", "at"}, "at", []string{"pcsc", "at"}, "at"},
		{"unknown driver", []string{"pcsc", "at"}, "qmi", []string{"auto", "pcsc", "at"}, "auto"},
		{"no current driver", []string{"pcsc"}, "", []string{"auto", "pcsc"}, "auto"},
		{"no drivers listed", nil, "pcsc", []string{"auto"}, "auto"},
		{"auto already listed", []string{"auto", "pcsc"}, "qmi", []string{"auto", "pcsc"}, "auto"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DriverOptions(tt.drivers, tt.current)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DriverOptions() = %v, want %v", got, tt.want)
			}
			if sel := SelectedDriver(got, tt.current); sel != tt.selected {
				t.Errorf("SelectedDriver() = %q, want %q", sel, tt.selected)
			}
		})
	}
}

func TestSections(t *testing.T) {
	t.Run("dashboard", func(t *testing.T) {
		snap := load(t, loader.Dashboard, staticGetter{
			gateway.EndpointCheckLpac: installed,
			gateway.EndpointDashboardSummary: `{"success":true,"data":{"chip_status":"connected","eid":"8904",
				"profiles_total":1,"notifications_pending":2}}`,
		})
		secs := Sections(snap)
		if len(secs) != 3 {
			t.Fatalf("len(Sections) = %d, want 3 without free memory", len(secs))
		}
		status := secs[0].Rows[0]
		if status.Badge == nil || status.Badge.Tone != ToneSuccess || status.Value != "Connected" {
			t.Errorf("status row = %+v", status)
		}
		if secs[2].Note == "" {
			t.Error("pending notifications should add a note")
		}
	})

	t.Run("settings fall back to auto", func(t *testing.T) {
		snap := load(t, loader.Settings, staticGetter{
			gateway.EndpointCheckLpac:       installed,
			gateway.EndpointGetConfig:       `{"success":true,"data":{"apdu_driver":"mbim","custom":"1"}}`,
			gateway.EndpointListAPDUDrivers: `{"success":true,"data":{"drivers":["pcsc","at"]}}`,
		})
		rows := Sections(snap)[0].Rows
		if rows[0].Value != gateway.DriverAuto {
			t.Errorf("APDU Driver = %q, want auto", rows[0].Value)
		}
		if last := rows[len(rows)-1]; last.Label != "custom" || last.Value != "1" {
			t.Errorf("last row = %+v, want the unknown key", last)
		}
	})

	t.Run("list views and unavailable have none", func(t *testing.T) {
		if secs := Sections(load(t, loader.Profiles, staticGetter{
			gateway.EndpointCheckLpac: installed, gateway.EndpointListProfiles: twoProfiles,
		})); secs != nil {
			t.Errorf("Sections(profiles) = %v, want nil", secs)
		}
		if secs := Sections(load(t, loader.Chip, staticGetter{gateway.EndpointCheckLpac: notInstalled})); secs != nil {
			t.Errorf("Sections(unavailable) = %v, want nil", secs)
		}
	})
}
