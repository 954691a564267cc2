package mcp

// ProbeDisplayInput is the input for the probe_display tool.
type ProbeDisplayInput struct {
	Display  string `json:"display,omitempty" jsonschema:"X display to probe (e.g. :0 or host:1.0). Default: DISPLAY, then config, then the login session"`
	Backend  string `json:"backend,omitempty" jsonschema:"Backend to use: auto, native or xgb (default: config backend)"`
	Monitors *bool  `json:"monitors,omitempty" jsonschema:"When true, query XRandR monitors through the xgb backend (default: config probe.monitors)"`
}

// ParseDisplayInput is the input for the parse_display tool.
type ParseDisplayInput struct {
	Name string `json:"name" jsonschema:"required,Display string to parse (e.g. :0, unix:1.0, [::1]:2)"`
}

// ParseDisplayOutput is the output for the parse_display tool.
type ParseDisplayOutput struct {
	Protocol   string `json:"protocol,omitempty"`
	Host       string `json:"host,omitempty"`
	Display    int    `json:"display"`
	Screen     int    `json:"screen"`
	Canonical  string `json:"canonical"`
	Local      bool   `json:"local"`
	SocketPath string `json:"socket_path,omitempty"`
	TCPPort    int    `json:"tcp_port,omitempty"`
}
