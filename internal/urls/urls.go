package urls

// Upstream project pages referenced from troubleshooting hints.

// LpacProject is the lpac command-line LPA that the router backend drives.
const LpacProject = "https://github.com/estkme-group/lpac"

// OpenWrtLuCI is the OpenWrt guide to the LuCI web interface, which hosts the API.
const OpenWrtLuCI = "https://openwrt.org/docs/guide-user/luci/start"
