package model

import "fmt"

// Action is the kind of mutation requested.
type Action string

const (
	ActionInstall   Action = "install"
	ActionUninstall Action = "uninstall"
	ActionUpdate    Action = "update"
)

// VersionLatest is the version placeholder resolved before any mutation.
const VersionLatest = "latest"

// Default pseudo-terminal size.
const (
	DefaultCols = 80
	DefaultRows = 30
)

// OperationRequest describes one install/uninstall/update.
type OperationRequest struct {
	Action  Action `json:"action"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Cols    int    `json:"cols,omitempty"`
	Rows    int    `json:"rows,omitempty"`
}

// WithDefaults returns a copy with version and terminal size defaults applied.
func (r OperationRequest) WithDefaults() OperationRequest {
	if r.Version == "" {
		r.Version = VersionLatest
	}
	if r.Cols <= 0 {
		r.Cols = DefaultCols
	}
	if r.Rows <= 0 {
		r.Rows = DefaultRows
	}
	return r
}

// Target returns name@version.
func (r OperationRequest) Target() string {
	if r.Version == "" {
		return r.Name
	}
	return fmt.Sprintf("%s@%s", r.Name, r.Version)
}

// AliasInfo is the registration alias and type a plugin declares.
type AliasInfo struct {
	Alias string `json:"pluginAlias,omitempty"`
	Type  string `json:"pluginType,omitempty"`
}

// Empty reports whether nothing is known.
func (a AliasInfo) Empty() bool {
	return a.Alias == "" && a.Type == ""
}

// Release is a published GitHub release.
type Release struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	HTMLURL     string `json:"html_url"`
	Prerelease  bool   `json:"prerelease"`
	PublishedAt string `json:"published_at"`
}

// HostPackageInfo describes the installed bridge package.
type HostPackageInfo struct {
	PackageRecord
	NodeVersion string `json:"nodeVersion,omitempty"`
}
