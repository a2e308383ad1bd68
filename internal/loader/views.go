package loader

import "github.com/muurk/lpac-console/internal/gateway"

// View describes one screen of the console and the reads it needs
type View struct {
	// Name is the stable identifier used on the command line and in logs
	Name string

	// Title is the heading shown to the user
	Title string

	// Primary is the endpoint whose failure makes the whole view an error.
	// Empty for views that only need the availability check.
	Primary gateway.Endpoint

	// Endpoints lists every read issued when the view loads
	Endpoints []gateway.Endpoint

	// RequiresLpac gates the view on check_lpac reporting an installed lpac
	RequiresLpac bool
}

var (
	// Dashboard shows the chip summary
	Dashboard = View{
		Name:         "dashboard",
		Title:        "eSIM Dashboard",
		Primary:      gateway.EndpointDashboardSummary,
		Endpoints:    []gateway.Endpoint{gateway.EndpointCheckLpac, gateway.EndpointDashboardSummary},
		RequiresLpac: true,
	}

	// Chip shows EID, platform and EUICCInfo2 details
	Chip = View{
		Name:         "chip",
		Title:        "Chip Information",
		Primary:      gateway.EndpointChipInfo,
		Endpoints:    []gateway.Endpoint{gateway.EndpointCheckLpac, gateway.EndpointChipInfo},
		RequiresLpac: true,
	}

	// Profiles lists installed profiles
	Profiles = View{
		Name:         "profiles",
		Title:        "eSIM Profiles",
		Primary:      gateway.EndpointListProfiles,
		Endpoints:    []gateway.Endpoint{gateway.EndpointCheckLpac, gateway.EndpointListProfiles},
		RequiresLpac: true,
	}

	// Notifications lists pending notifications
	Notifications = View{
		Name:         "notifications",
		Title:        "Notifications",
		Primary:      gateway.EndpointListNotifications,
		Endpoints:    []gateway.Endpoint{gateway.EndpointCheckLpac, gateway.EndpointListNotifications},
		RequiresLpac: true,
	}

	// Download hosts the profile download form
	Download = View{
		Name:         "download",
		Title:        "Download Profile",
		Endpoints:    []gateway.Endpoint{gateway.EndpointCheckLpac, gateway.EndpointGetConfig},
		RequiresLpac: true,
	}

	// Settings shows and edits the backend configuration. It has no primary
	// read: a failed get_config falls back to the defaults and leaves
	// discovery and factory reset usable.
	Settings = View{
		Name:  "settings",
		Title: "Settings",
		Endpoints: []gateway.Endpoint{
			gateway.EndpointCheckLpac,
			gateway.EndpointGetConfig,
			gateway.EndpointListAPDUDrivers,
			gateway.EndpointListHTTPDrivers,
		},
		RequiresLpac: true,
	}

	// About shows versions. It works without lpac.
	About = View{
		Name:      "about",
		Title:     "About",
		Primary:   gateway.EndpointSystemInfo,
		Endpoints: []gateway.Endpoint{gateway.EndpointSystemInfo},
	}
)

// Views returns the built-in views in menu order
func Views() []View {
	return []View{Dashboard, Chip, Profiles, Notifications, Download, Settings, About}
}

// ViewByName looks a view up by its Name
func ViewByName(name string) (View, bool) {
	for _, v := range Views() {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}
