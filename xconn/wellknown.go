package xconn

// WellKnownAtomNames lists the atoms the compositor pre-interns at startup
// instead of resolving lazily, mirroring the original's two static tables
// of frequently-used property and type names.
var WellKnownAtomNames = []string{
	"_NET_WM_WINDOW_OPACITY",
	"_NET_FRAME_EXTENTS",
	"WM_STATE",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"WM_ICON_NAME",
	"WM_TRANSIENT_FOR",
	"WM_WINDOW_ROLE",
	"WM_CLIENT_LEADER",
	"WM_CLIENT_MACHINE",
	"_NET_ACTIVE_WINDOW",
	"_COMPTON_SHADOW",
	"COMPTON_VERSION",
	"_NET_WM_WINDOW_TYPE",
	"_XROOTPMAP_ID",
	"ESETROOT_PMAP_ID",
	"_XSETROOT_ID",
	"_NET_CURRENT_DESKTOP",
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_TOOLBAR",
	"_NET_WM_WINDOW_TYPE_MENU",
	"_NET_WM_WINDOW_TYPE_UTILITY",
	"_NET_WM_WINDOW_TYPE_SPLASH",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_WINDOW_TYPE_NORMAL",
	"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU",
	"_NET_WM_WINDOW_TYPE_POPUP_MENU",
	"_NET_WM_WINDOW_TYPE_TOOLTIP",
	"_NET_WM_WINDOW_TYPE_NOTIFICATION",
	"_NET_WM_WINDOW_TYPE_COMBO",
	"_NET_WM_WINDOW_TYPE_DND",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_BYPASS_COMPOSITOR",
	"UTF8_STRING",
	"C_STRING",
}
