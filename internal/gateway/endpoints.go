package gateway

// Endpoint is the last path segment of a CGI endpoint under the API path
type Endpoint string

// Read endpoints (GET)
const (
	EndpointCheckLpac         Endpoint = "check_lpac"
	EndpointListProfiles      Endpoint = "list_profiles"
	EndpointListNotifications Endpoint = "list_notifications"
	EndpointChipInfo          Endpoint = "chip_info"
	EndpointDashboardSummary  Endpoint = "dashboard_summary"
	EndpointGetConfig         Endpoint = "get_config"
	EndpointListAPDUDrivers   Endpoint = "list_apdu_drivers"
	EndpointListHTTPDrivers   Endpoint = "list_http_drivers"
	EndpointSystemInfo        Endpoint = "system_info"
)

// Action endpoints (POST)
const (
	EndpointEnableProfile           Endpoint = "enable_profile"
	EndpointDisableProfile          Endpoint = "disable_profile"
	EndpointDeleteProfile           Endpoint = "delete_profile"
	EndpointSetNickname             Endpoint = "set_nickname"
	EndpointDownloadProfile         Endpoint = "download_profile"
	EndpointProcessNotification     Endpoint = "process_notification"
	EndpointRemoveNotification      Endpoint = "remove_notification"
	EndpointProcessAllNotifications Endpoint = "process_all_notifications"
	EndpointRemoveAllNotifications  Endpoint = "remove_all_notifications"
	EndpointDiscoverProfiles        Endpoint = "discover_profiles"
	EndpointFactoryReset            Endpoint = "factory_reset"
	EndpointUpdateConfig            Endpoint = "update_config"
)

var actionEndpoints = map[Endpoint]bool{
	EndpointEnableProfile:           true,
	EndpointDisableProfile:          true,
	EndpointDeleteProfile:           true,
	EndpointSetNickname:             true,
	EndpointDownloadProfile:         true,
	EndpointProcessNotification:     true,
	EndpointRemoveNotification:      true,
	EndpointProcessAllNotifications: true,
	EndpointRemoveAllNotifications:  true,
	EndpointDiscoverProfiles:        true,
	EndpointFactoryReset:            true,
	EndpointUpdateConfig:            true,
}

// IsAction reports whether the endpoint changes state on the chip or router
func (e Endpoint) IsAction() bool {
	return actionEndpoints[e]
}

func (e Endpoint) String() string {
	return string(e)
}
