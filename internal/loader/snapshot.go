package loader

import (
	"fmt"
	"slices"
	"time"

	"github.com/muurk/lpac-console/internal/gateway"
)

// Result is the outcome of one read. A transport or parse failure leaves
// Envelope as the empty envelope and keeps the cause in Err.
type Result struct {
	Endpoint gateway.Endpoint
	Envelope gateway.Envelope
	Err      error
}

// OK reports whether the read reached the backend and it answered success
func (r Result) OK() bool {
	return r.Err == nil && r.Envelope.Success
}

// Failure returns why the read is unusable, or nil
func (r Result) Failure() error {
	if r.Err != nil {
		return r.Err
	}
	if !r.Envelope.Success {
		return gateway.NewReadError(r.Endpoint, r.Envelope.Message())
	}
	return nil
}

// Snapshot is the immutable state of one view load. Typed data is decoded
// once at load time; accessors never touch the network.
type Snapshot struct {
	View      View
	Available bool
	Results   map[gateway.Endpoint]Result
	LoadedAt  time.Time

	lpac          gateway.LpacStatus
	profiles      []gateway.Profile
	notifications []gateway.Notification
	summary       gateway.DashboardSummary
	chip          gateway.ChipInfo
	settings      gateway.Settings
	apduDrivers   []string
	httpDrivers   []string
	system        gateway.SystemInfo
	decodeErrs    map[gateway.Endpoint]error
}

func newSnapshot(v View, results map[gateway.Endpoint]Result, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		View:       v,
		Results:    results,
		LoadedAt:   loadedAt,
		decodeErrs: map[gateway.Endpoint]error{},
		settings:   gateway.Settings{}.WithDefaults(),
	}

	for ep, r := range results {
		if !r.OK() {
			continue
		}
		if err := s.decode(ep, r.Envelope); err != nil {
			s.decodeErrs[ep] = gateway.NewParseError(ep, fmt.Sprintf("unexpected data from %s", ep), err)
		}
	}

	if v.RequiresLpac {
		s.Available = results[gateway.EndpointCheckLpac].OK() && bool(s.lpac.Installed)
	} else {
		s.Available = true
	}
	return s
}

func (s *Snapshot) decode(ep gateway.Endpoint, env gateway.Envelope) error {
	switch ep {
	case gateway.EndpointCheckLpac:
		return env.DecodeData(&s.lpac)
	case gateway.EndpointListProfiles:
		var list gateway.ProfileList
		if err := env.DecodeData(&list); err != nil {
			return err
		}
		s.profiles = list.Profiles
	case gateway.EndpointListNotifications:
		var list gateway.NotificationList
		if err := env.DecodeData(&list); err != nil {
			return err
		}
		s.notifications = list.Notifications
	case gateway.EndpointDashboardSummary:
		return env.DecodeData(&s.summary)
	case gateway.EndpointChipInfo:
		return env.DecodeData(&s.chip)
	case gateway.EndpointGetConfig:
		settings, err := gateway.DecodeSettings(env)
		if err != nil {
			return err
		}
		s.settings = settings
	case gateway.EndpointListAPDUDrivers:
		var list gateway.DriverList
		if err := env.DecodeData(&list); err != nil {
			return err
		}
		s.apduDrivers = list.Names()
	case gateway.EndpointListHTTPDrivers:
		var list gateway.DriverList
		if err := env.DecodeData(&list); err != nil {
			return err
		}
		s.httpDrivers = list.Names()
	case gateway.EndpointSystemInfo:
		return env.DecodeData(&s.system)
	}
	return nil
}

// Result returns the raw result of one read
func (s *Snapshot) Result(ep gateway.Endpoint) (Result, bool) {
	r, ok := s.Results[ep]
	return r, ok
}

// Err returns why ep cannot be shown: lpac missing, read failed or the
// data did not decode.
func (s *Snapshot) Err(ep gateway.Endpoint) error {
	if s.View.RequiresLpac && !s.Available {
		return gateway.NewUnavailableError()
	}
	r, ok := s.Results[ep]
	if !ok {
		return fmt.Errorf("%s is not loaded by the %s view", ep, s.View.Name)
	}
	if err := r.Failure(); err != nil {
		return err
	}
	return s.decodeErrs[ep]
}

// PrimaryErr returns the error of the view's primary read, or nil
func (s *Snapshot) PrimaryErr() error {
	if s.View.Primary == "" {
		return nil
	}
	return s.Err(s.View.Primary)
}

// Failures counts reads that did not produce usable data
func (s *Snapshot) Failures() int {
	n := 0
	for ep, r := range s.Results {
		if !r.OK() || s.decodeErrs[ep] != nil {
			n++
		}
	}
	return n
}

// Lpac returns the availability check data
func (s *Snapshot) Lpac() (gateway.LpacStatus, error) {
	r, ok := s.Results[gateway.EndpointCheckLpac]
	if !ok {
		return gateway.LpacStatus{}, fmt.Errorf("%s is not loaded by the %s view", gateway.EndpointCheckLpac, s.View.Name)
	}
	if err := r.Failure(); err != nil {
		return gateway.LpacStatus{}, err
	}
	return s.lpac, s.decodeErrs[gateway.EndpointCheckLpac]
}

// Profiles returns the installed profiles
func (s *Snapshot) Profiles() ([]gateway.Profile, error) {
	if err := s.Err(gateway.EndpointListProfiles); err != nil {
		return nil, err
	}
	return slices.Clone(s.profiles), nil
}

// Notifications returns the pending notifications
func (s *Snapshot) Notifications() ([]gateway.Notification, error) {
	if err := s.Err(gateway.EndpointListNotifications); err != nil {
		return nil, err
	}
	return slices.Clone(s.notifications), nil
}

// Summary returns the dashboard summary
func (s *Snapshot) Summary() (gateway.DashboardSummary, error) {
	if err := s.Err(gateway.EndpointDashboardSummary); err != nil {
		return gateway.DashboardSummary{}, err
	}
	return s.summary, nil
}

// Chip returns the chip information
func (s *Snapshot) Chip() (gateway.ChipInfo, error) {
	if err := s.Err(gateway.EndpointChipInfo); err != nil {
		return gateway.ChipInfo{}, err
	}
	return s.chip, nil
}

// Settings returns a copy of the backend configuration with defaults applied.
// On failure the defaults alone are returned together with the error.
func (s *Snapshot) Settings() (gateway.Settings, error) {
	return s.settings.Clone(), s.Err(gateway.EndpointGetConfig)
}

// APDUDrivers returns the available APDU drivers. A failed read yields none.
func (s *Snapshot) APDUDrivers() []string {
	return append([]string(nil), s.apduDrivers...)
}

// HTTPDrivers returns the available HTTP drivers. A failed read yields none.
func (s *Snapshot) HTTPDrivers() []string {
	return append([]string(nil), s.httpDrivers...)
}

// SystemInfo returns version information
func (s *Snapshot) SystemInfo() (gateway.SystemInfo, error) {
	if err := s.Err(gateway.EndpointSystemInfo); err != nil {
		return gateway.SystemInfo{}, err
	}
	return s.system, nil
}
