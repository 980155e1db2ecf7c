package model

// VersionInfo holds build/version information served by the system endpoints.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	BuildTime string `json:"buildTime,omitempty"`
}
