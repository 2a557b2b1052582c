package ir

// Version constants for the manifest format and tool.
const (
	// ManifestVersion is the manifest schema version.
	ManifestVersion = "1"

	// ToolVersion is the animpub release version.
	ToolVersion = "0.3.0"
)
