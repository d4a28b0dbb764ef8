// Package config persists the configured tool sources and daemon settings
// to a YAML file and watches it for out-of-band edits.
package config

// Settings represents global daemon configuration.
type Settings struct {
	ControlPort     int `yaml:"control_port" json:"control_port"`
	PlaceholderRows int `yaml:"placeholder_rows" json:"placeholder_rows"`
	DetailTimeoutMS int `yaml:"detail_timeout_ms" json:"detail_timeout_ms"`
}

// DefaultSettings returns the standard daemon configuration.
func DefaultSettings() Settings {
	return Settings{
		ControlPort:     6340,
		PlaceholderRows: 3,
		DetailTimeoutMS: 10000,
	}
}
