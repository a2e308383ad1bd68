package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ProfileState is the enable state of a profile on the chip
type ProfileState string

const (
	ProfileEnabled  ProfileState = "enabled"
	ProfileDisabled ProfileState = "disabled"
)

// FlexInt decodes a JSON number or a numeric string. Shell-built CGI
// responses are not consistent about quoting.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*n = FlexInt(f)
	return nil
}

// FlexBool decodes a JSON boolean, a number or "true"/"1" style strings
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler
func (v *FlexBool) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`)) {
	case "true", "1", "yes", "on":
		*v = true
	default:
		*v = false
	}
	return nil
}

// FlexString decodes any JSON scalar, array or object into display text.
// Arrays are joined with ", " and objects rendered as sorted key=value pairs.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = FlexString(flatten(raw))
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

func flatten(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, flatten(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+flatten(val[k]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

// Profile is one eSIM profile installed on the chip, keyed by ICCID
type Profile struct {
	ICCID           string       `json:"iccid"`
	Nickname        string       `json:"nickname,omitempty"`
	Name            string       `json:"name,omitempty"`
	ServiceProvider string       `json:"serviceProvider,omitempty"`
	State           ProfileState `json:"state"`
	Class           string       `json:"profileClass,omitempty"`
}

// UnmarshalJSON accepts both the lpac field names and the short ones
func (p *Profile) UnmarshalJSON(b []byte) error {
	var raw struct {
		ICCID               FlexString `json:"iccid"`
		Nickname            FlexString `json:"nickname"`
		ProfileNickname     FlexString `json:"profileNickname"`
		Name                FlexString `json:"name"`
		ProfileName         FlexString `json:"profileName"`
		ServiceProvider     FlexString `json:"serviceProvider"`
		ServiceProviderName FlexString `json:"serviceProviderName"`
		State               FlexString `json:"state"`
		ProfileState        FlexString `json:"profileState"`
		ProfileClass        FlexString `json:"profileClass"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	p.ICCID = string(raw.ICCID)
	p.Nickname = firstNonEmpty(raw.ProfileNickname, raw.Nickname)
	p.Name = firstNonEmpty(raw.ProfileName, raw.Name)
	p.ServiceProvider = firstNonEmpty(raw.ServiceProviderName, raw.ServiceProvider)
	p.Class = string(raw.ProfileClass)

	switch strings.ToLower(firstNonEmpty(raw.ProfileState, raw.State)) {
	case "enabled", "1", "true":
		p.State = ProfileEnabled
	default:
		p.State = ProfileDisabled
	}
	return nil
}

// Enabled reports whether the profile is the active one
func (p Profile) Enabled() bool {
	return p.State == ProfileEnabled
}

// DisplayName falls back from nickname to profile name
func (p Profile) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	if p.Name != "" {
		return p.Name
	}
	return "(unnamed)"
}

// Notification is one pending eUICC notification, keyed by sequence number
type Notification struct {
	SeqNumber int    `json:"seqNumber"`
	Operation string `json:"operation"`
	Address   string `json:"address"`
}

// UnmarshalJSON accepts both the lpac field names and the snake_case ones
func (n *Notification) UnmarshalJSON(b []byte) error {
	var raw struct {
		SeqNumber             *FlexInt   `json:"seqNumber"`
		SeqNumberSnake        *FlexInt   `json:"seq_number"`
		Operation             FlexString `json:"operation"`
		NotificationOperation FlexString `json:"notificationOperation"`
		Address               FlexString `json:"address"`
		NotificationAddress   FlexString `json:"notificationAddress"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch {
	case raw.SeqNumber != nil:
		n.SeqNumber = int(*raw.SeqNumber)
	case raw.SeqNumberSnake != nil:
		n.SeqNumber = int(*raw.SeqNumberSnake)
	}
	n.Operation = firstNonEmpty(raw.NotificationOperation, raw.Operation)
	n.Address = firstNonEmpty(raw.NotificationAddress, raw.Address)
	return nil
}

// ProfileList is the data of list_profiles
type ProfileList struct {
	Profiles []Profile `json:"profiles"`
}

// NotificationList is the data of list_notifications
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
}

// LpacStatus is the data of check_lpac
type LpacStatus struct {
	Installed FlexBool   `json:"installed"`
	Path      FlexString `json:"path,omitempty"`
	Version   FlexString `json:"version,omitempty"`
}

// DashboardSummary is the data of dashboard_summary
type DashboardSummary struct {
	ChipStatus           FlexString `json:"chip_status"`
	EID                  FlexString `json:"eid"`
	ProfilesTotal        FlexInt    `json:"profiles_total"`
	ProfilesEnabled      FlexInt    `json:"profiles_enabled"`
	ProfilesDisabled     FlexInt    `json:"profiles_disabled"`
	NotificationsPending FlexInt    `json:"notifications_pending"`
	FreeMemory           *FlexInt   `json:"free_memory,omitempty"`
}

// EUICCInfo2 is the EUICCInfo2 block reported by lpac chip info
type EUICCInfo2 struct {
	ProfileVersion            FlexString `json:"profileVersion,omitempty"`
	SVN                       FlexString `json:"svn,omitempty"`
	FirmwareVersion           FlexString `json:"euiccFirmwareVer,omitempty"`
	ExtCardResource           FlexString `json:"extCardResource,omitempty"`
	UICCCapability            FlexString `json:"uiccCapability,omitempty"`
	JavacardVersion           FlexString `json:"javacardVersion,omitempty"`
	GlobalPlatformVersion     FlexString `json:"globalplatformVersion,omitempty"`
	RSPCapability             FlexString `json:"rspCapability,omitempty"`
	CIPKIDListForVerification FlexString `json:"euiccCiPKIdListForVerification,omitempty"`
	CIPKIDListForSigning      FlexString `json:"euiccCiPKIdListForSigning,omitempty"`
	PPVersion                 FlexString `json:"ppVersion,omitempty"`
	SASAccreditationNumber    FlexString `json:"sasAcreditationNumber,omitempty"`
}

// ChipCapabilities summarizes capacity figures
type ChipCapabilities struct {
	SupportedProfiles *FlexInt `json:"supportedProfiles,omitempty"`
	FreeMemory        *FlexInt `json:"freeMemory,omitempty"`
}

// ChipInfo is the data of chip_info
type ChipInfo struct {
	EID             FlexString        `json:"eidValue"`
	PlatformType    FlexString        `json:"platformType,omitempty"`
	PlatformVersion FlexString        `json:"platformVersion,omitempty"`
	PlatformLabel   FlexString        `json:"platformLabel,omitempty"`
	Info2           *EUICCInfo2       `json:"EUICCInfo2,omitempty"`
	Capabilities    *ChipCapabilities `json:"capabilities,omitempty"`
}

// IsZero reports whether no chip field was present
func (c ChipInfo) IsZero() bool {
	return c.EID == "" && c.PlatformType == "" && c.PlatformVersion == "" &&
		c.PlatformLabel == "" && c.Info2 == nil && c.Capabilities == nil
}

// SystemInfo is the data of system_info
type SystemInfo struct {
	AppVersion     FlexString `json:"app_version"`
	LpacVersion    FlexString `json:"lpac_version"`
	OpenWrtVersion FlexString `json:"openwrt_version"`
	LuCIVersion    FlexString `json:"luci_version"`
}

// DriverList is the data of list_apdu_drivers and list_http_drivers
type DriverList struct {
	Drivers []FlexString `json:"drivers"`
}

// Names returns the driver names as plain strings
func (d DriverList) Names() []string {
	names := make([]string, 0, len(d.Drivers))
	for _, drv := range d.Drivers {
		if drv != "" {
			names = append(names, string(drv))
		}
	}
	return names
}

// DownloadResult is the data of a successful download_profile
type DownloadResult struct {
	ICCID FlexString `json:"iccid"`
}

// DiscoveryResult is the data of a successful discover_profiles
type DiscoveryResult struct {
	Profiles []FlexString `json:"profiles"`
}

func firstNonEmpty(values ...FlexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}
