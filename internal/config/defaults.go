package config

// DefaultPath is where init writes the configuration.
const DefaultPath = ".bandobast.yml"

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore, e.g. BANDOBAST_SERVER__PORT.
const EnvPrefix = "BANDOBAST_"

// ScratchExcludes match editor lock files and OS metadata. They are not
// applied by default; init offers them and writes them to exclude when the
// operator opts in. The default config indexes every file in the inbox.
var ScratchExcludes = []string{
	"**/.DS_Store",
	"**/Thumbs.db",
	"**/~$*",
	"**/*.tmp",
	"**/.git/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		EventName: "Nashik Ganeshotsav Bandobast",
		InboxDir:  "data/inbox",
		BaseDir:   "data",
		DataDir:   "data",
		DBPath:    "data/bandobast.db",
		Include:   []string{"**"},
		KML: KMLConfig{
			DocumentName: "Nashik Ganpati Bandobast",
			Grouping:     "city",
		},
		Server: ServerConfig{
			Port:            8080,
			AllowAllOrigins: true,
		},
		AI: AIConfig{
			Provider: "openai",
			Model:    "gpt-4",
		},
	}
}
