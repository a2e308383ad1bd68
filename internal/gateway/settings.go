package gateway

import "sort"

// Settings keys understood by luci-app-lpac
const (
	SettingAPDUDriver  = "apdu_driver"
	SettingHTTPDriver  = "http_driver"
	SettingDefaultSMDP = "default_smdp"
)

// DriverAuto lets lpac pick a driver itself
const DriverAuto = "auto"

// DefaultSettings are applied client-side whenever the backend omits a key
var DefaultSettings = map[string]string{
	SettingAPDUDriver:  DriverAuto,
	SettingDefaultSMDP: "",
}

// Settings is the flat key/value configuration of the backend. It is only
// ever submitted as a whole.
type Settings map[string]string

// DecodeSettings reads the data of get_config. Values of any JSON type are
// kept as text.
func DecodeSettings(env Envelope) (Settings, error) {
	raw := map[string]FlexString{}
	if err := env.DecodeData(&raw); err != nil {
		return nil, err
	}
	s := make(Settings, len(raw))
	for k, v := range raw {
		s[k] = string(v)
	}
	return s.WithDefaults(), nil
}

// WithDefaults returns a copy with DefaultSettings filled in for missing keys
func (s Settings) WithDefaults() Settings {
	out := s.Clone()
	for k, v := range DefaultSettings {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Clone returns an independent copy
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Payload returns the update_config request body
func (s Settings) Payload() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s.WithDefaults() {
		out[k] = v
	}
	return out
}
