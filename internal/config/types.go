package config

// Config is the top-level bandobast configuration, corresponding to .bandobast.yml.
type Config struct {
	EventName string       `yaml:"event_name" koanf:"event_name"`
	InboxDir  string       `yaml:"inbox_dir" koanf:"inbox_dir"`
	BaseDir   string       `yaml:"base_dir" koanf:"base_dir"`
	DataDir   string       `yaml:"data_dir" koanf:"data_dir"`
	DBPath    string       `yaml:"db_path" koanf:"db_path"`
	Include   []string     `yaml:"include" koanf:"include"`
	Exclude   []string     `yaml:"exclude" koanf:"exclude"`
	KML       KMLConfig    `yaml:"kml" koanf:"kml"`
	Server    ServerConfig `yaml:"server" koanf:"server"`
	AI        AIConfig     `yaml:"ai" koanf:"ai"`
}

// KMLConfig holds defaults for geo exports.
type KMLConfig struct {
	DocumentName string `yaml:"document_name" koanf:"document_name"`
	Grouping     string `yaml:"grouping" koanf:"grouping"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port" koanf:"port"`
	AllowAllOrigins bool     `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	RequireAuth     bool     `yaml:"require_auth" koanf:"require_auth"`
	// RebuildSchedule is a cron spec for periodic manifest rebuilds.
	// Empty disables the scheduler.
	RebuildSchedule string `yaml:"rebuild_schedule" koanf:"rebuild_schedule"`
}

// AIConfig selects the chat completion backend used for drafting.
type AIConfig struct {
	Provider string `yaml:"provider" koanf:"provider"`
	Model    string `yaml:"model" koanf:"model"`
	BaseURL  string `yaml:"base_url,omitempty" koanf:"base_url"`
	// APIKey is normally supplied through BANDOBAST_AI__API_KEY or
	// OPENAI_API_KEY rather than written to disk.
	APIKey            string `yaml:"api_key,omitempty" koanf:"api_key"`
	RequestsPerMinute int    `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}
