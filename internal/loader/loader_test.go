package loader

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muurk/lpac-console/internal/gateway"
)

type fakeGetter struct {
	mu        sync.Mutex
	responses map[gateway.Endpoint]string
	errs      map[gateway.Endpoint]error
	jitter    bool
	calls     map[gateway.Endpoint]int
}

func newFakeGetter(responses map[gateway.Endpoint]string) *fakeGetter {
	return &fakeGetter{
		responses: responses,
		errs:      map[gateway.Endpoint]error{},
		calls:     map[gateway.Endpoint]int{},
	}
}

func (f *fakeGetter) Get(ctx context.Context, ep gateway.Endpoint) (gateway.Envelope, error) {
	f.mu.Lock()
	f.calls[ep]++
	body, ok := f.responses[ep]
	err := f.errs[ep]
	jitter := f.jitter
	f.mu.Unlock()

	if jitter {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	}
	if err != nil {
		return gateway.Envelope{}, err
	}
	if !ok {
		return gateway.Envelope{}, gateway.NewHTTPError(ep, 404, "Not Found")
	}
	return gateway.DecodeEnvelope([]byte(body))
}

func (f *fakeGetter) callCount(ep gateway.Endpoint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ep]
}

const (
	installed    = `{"success":true,"data":{"installed":true}}`
	notInstalled = `{"success":true,"data":{"installed":false}}`
	twoProfiles  = `{"success":true,"data":{"profiles":[
		{"iccid":"8944110000000000001","profileNickname":"Work","profileState":"enabled"},
		{"iccid":"8944110000000000002","profileName":"Travel","profileState":"disabled"}]}}`
)

func TestLoadProfiles(t *testing.T) {
	getter := newFakeGetter(map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:    installed,
		gateway.EndpointListProfiles: twoProfiles,
	})

	snap := New(getter).Load(context.Background(), Profiles)

	if !snap.Available {
		t.Fatal("Available = false, want true")
	}
	profiles, err := snap.Profiles()
	if err != nil {
		t.Fatalf("Profiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("len(Profiles()) = %d, want 2", len(profiles))
	}
	if !profiles[0].Enabled() || profiles[1].Enabled() {
		t.Errorf("profile states = %v, %v", profiles[0].State, profiles[1].State)
	}
	if snap.PrimaryErr() != nil {
		t.Errorf("PrimaryErr() = %v", snap.PrimaryErr())
	}
	if snap.Failures() != 0 {
		t.Errorf("Failures() = %d", snap.Failures())
	}
}

func TestLoadIsFailSoft(t *testing.T) {
	getter := newFakeGetter(map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:       installed,
		gateway.EndpointGetConfig:       `{"success":true,"data":{"apdu_driver":"pcsc"}}`,
		gateway.EndpointListAPDUDrivers: `{"success":true,"data":{"drivers":["pcsc","at"]}}`,
	})
	getter.errs[gateway.EndpointListHTTPDrivers] = gateway.NewNetworkError(gateway.EndpointListHTTPDrivers, "r", "GET failed", errors.New("reset"))

	snap := New(getter).Load(context.Background(), Settings)

	r, ok := snap.Result(gateway.EndpointListHTTPDrivers)
	if !ok {
		t.Fatal("failed read missing from results")
	}
	if r.Err == nil {
		t.Error("failed read should keep its error")
	}
	if !reflect.DeepEqual(r.Envelope, gateway.Envelope{}) {
		t.Errorf("failed read envelope = %+v, want empty", r.Envelope)
	}

	settings, err := snap.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings[gateway.SettingAPDUDriver] != "pcsc" {
		t.Errorf("apdu_driver = %q", settings[gateway.SettingAPDUDriver])
	}
	if got := snap.APDUDrivers(); len(got) != 2 {
		t.Errorf("APDUDrivers() = %v", got)
	}
	if got := snap.HTTPDrivers(); len(got) != 0 {
		t.Errorf("HTTPDrivers() = %v, want none", got)
	}
	if snap.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", snap.Failures())
	}
}

func TestLoadUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeGetter)
	}{
		{
			name: "not installed",
			setup: func(f *fakeGetter) {
				f.responses[gateway.EndpointCheckLpac] = notInstalled
			},
		},
		{
			name: "check failed",
			setup: func(f *fakeGetter) {
				f.errs[gateway.EndpointCheckLpac] = gateway.NewHTTPError(gateway.EndpointCheckLpac, 500, "boom")
			},
		},
		{
			name: "check answered success=false",
			setup: func(f *fakeGetter) {
				f.responses[gateway.EndpointCheckLpac] = `{"success":false,"message":"no"}`
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := newFakeGetter(map[gateway.Endpoint]string{
				gateway.EndpointListProfiles: twoProfiles,
			})
			tt.setup(getter)

			snap := New(getter).Load(context.Background(), Profiles)

			if snap.Available {
				t.Fatal("Available = true, want false")
			}
			if _, err := snap.Profiles(); !gateway.IsUnavailableError(err) {
				t.Errorf("Profiles() error = %v, want unavailable", err)
			}
		})
	}
}

func TestLoadAboutIgnoresLpac(t *testing.T) {
	getter := newFakeGetter(map[gateway.Endpoint]string{
		gateway.EndpointSystemInfo: `{"success":true,"data":{"app_version":"1.0.0","lpac_version":"2.1.0","openwrt_version":"23.05.3","luci_version":"git-24"}}`,
	})

	snap := New(getter).Load(context.Background(), About)

	if !snap.Available {
		t.Error("About should be available without lpac")
	}
	if getter.callCount(gateway.EndpointCheckLpac) != 0 {
		t.Error("About must not call check_lpac")
	}
	info, err := snap.SystemInfo()
	if err != nil {
		t.Fatalf("SystemInfo() error = %v", err)
	}
	if info.LpacVersion != "2.1.0" {
		t.Errorf("LpacVersion = %q", info.LpacVersion)
	}
}

func TestPrimaryErr(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantType  gateway.ErrorType
		wantShort string
	}{
		{"success false", `{"success":false,"message":"lpac: no card"}`, gateway.ErrTypeReadFailure, "lpac: no card"},
		{"success false without message", `{"success":false}`, gateway.ErrTypeReadFailure, gateway.FallbackMessage},
		{"bad data", `{"success":true,"data":{"profiles":"nope"}}`, gateway.ErrTypeParse, "Invalid response from router"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := newFakeGetter(map[gateway.Endpoint]string{
				gateway.EndpointCheckLpac:    installed,
				gateway.EndpointListProfiles: tt.body,
			})
			snap := New(getter).Load(context.Background(), Profiles)

			err := snap.PrimaryErr()
			var gwErr *gateway.Error
			if !errors.As(err, &gwErr) {
				t.Fatalf("PrimaryErr() = %v, want *gateway.Error", err)
			}
			if gwErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", gwErr.Type, tt.wantType)
			}
			if got := gateway.ShortMessage(err); got != tt.wantShort {
				t.Errorf("ShortMessage() = %q, want %q", got, tt.wantShort)
			}
		})
	}
}

func TestLoadIsIdempotentAndOrderIndependent(t *testing.T) {
	responses := map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:       installed,
		gateway.EndpointGetConfig:       `{"success":true,"data":{"apdu_driver":"at","default_smdp":"rsp.example.com"}}`,
		gateway.EndpointListAPDUDrivers: `{"success":true,"data":{"drivers":["pcsc","at"]}}`,
		gateway.EndpointListHTTPDrivers: `{"success":false,"message":"unsupported"}`,
	}

	getter := newFakeGetter(responses)
	getter.jitter = true
	l := New(getter)

	first := l.Load(context.Background(), Settings)
	for i := 0; i < 10; i++ {
		next := l.Load(context.Background(), Settings)
		a, b := *first, *next
		a.LoadedAt, b.LoadedAt = time.Time{}, time.Time{}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("load %d differs from first load:\n%+v\n%+v", i, a, b)
		}
	}
}

type barrierGetter struct {
	want    int32
	started int32
	release chan struct{}
}

func (b *barrierGetter) Get(ctx context.Context, ep gateway.Endpoint) (gateway.Envelope, error) {
	if atomic.AddInt32(&b.started, 1) == b.want {
		close(b.release)
	}
	select {
	case <-b.release:
		return gateway.Envelope{Success: true}, nil
	case <-time.After(2 * time.Second):
		return gateway.Envelope{}, errors.New("reads were not issued concurrently")
	}
}

func TestLoadIssuesReadsConcurrently(t *testing.T) {
	getter := &barrierGetter{want: int32(len(Settings.Endpoints)), release: make(chan struct{})}

	snap := New(getter).Load(context.Background(), Settings)

	for ep, r := range snap.Results {
		if r.Err != nil {
			t.Errorf("%s: %v", ep, r.Err)
		}
	}
}

func TestReload(t *testing.T) {
	getter := newFakeGetter(map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:         installed,
		gateway.EndpointListNotifications: `{"success":true,"data":{"notifications":[{"seqNumber":1,"notificationOperation":"install","notificationAddress":"a"}]}}`,
	})
	l := New(getter)

	if err := l.Reload(context.Background()); !errors.Is(err, ErrNothingLoaded) {
		t.Fatalf("Reload() before Load = %v, want ErrNothingLoaded", err)
	}
	if l.Current() != nil {
		t.Error("Current() before Load should be nil")
	}

	l.Load(context.Background(), Notifications)
	getter.mu.Lock()
	getter.responses[gateway.EndpointListNotifications] = `{"success":true,"data":{"notifications":[]}}`
	getter.mu.Unlock()

	if err := l.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if n := getter.callCount(gateway.EndpointListNotifications); n != 2 {
		t.Errorf("list_notifications called %d times, want 2", n)
	}
	notes, err := l.Current().Notifications()
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 0 {
		t.Errorf("Current() after reload has %d notifications, want 0", len(notes))
	}
	if l.Current().View.Name != Notifications.Name {
		t.Errorf("Reload() loaded %s", l.Current().View.Name)
	}
}

func TestViewByName(t *testing.T) {
	for _, v := range Views() {
		got, ok := ViewByName(v.Name)
		if !ok || got.Name != v.Name {
			t.Errorf("ViewByName(%q) = %v, %v", v.Name, got.Name, ok)
		}
		if v.RequiresLpac && v.Endpoints[0] != gateway.EndpointCheckLpac {
			t.Errorf("%s requires lpac but does not read check_lpac first", v.Name)
		}
		for _, ep := range v.Endpoints {
			if ep.IsAction() {
				t.Errorf("%s reads action endpoint %s", v.Name, ep)
			}
		}
	}
	if _, ok := ViewByName("nope"); ok {
		t.Error("ViewByName(nope) should fail")
	}
}

func TestSnapshotListsAreCopies(t *testing.T) {
	getter := newFakeGetter(map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:    installed,
		gateway.EndpointListProfiles: twoProfiles,
	})
	snap := New(getter).Load(context.Background(), Profiles)

	first, _ := snap.Profiles()
	first[0].State = gateway.ProfileDisabled
	again, _ := snap.Profiles()
	if !again[0].Enabled() {
		t.Error("changing a returned profile changed the snapshot")
	}

	getter = newFakeGetter(map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:         installed,
		gateway.EndpointListNotifications: `{"success":true,"data":{"notifications":[{"seqNumber":7}]}}`,
	})
	snap = New(getter).Load(context.Background(), Notifications)

	notes, _ := snap.Notifications()
	notes[0].SeqNumber = 99
	if again, _ := snap.Notifications(); again[0].SeqNumber != 7 {
		t.Errorf("SeqNumber = %d, want 7", again[0].SeqNumber)
	}
}
