package config

// DefaultLocalPath is the project config file read when no --config is given.
const DefaultLocalPath = ".animpub.json"

// GetDefaults returns the default configuration values.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"cache_dir":     "assets/cache/",
		"backup_suffix": ".orig",
		"database":      "",
		"log_level":     "info",
		"format":        "text",
	}
}
