// Package model provides the data structures shared by the plugin engine components:
// installed/registry package records, operation requests and release metadata.
package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

const (
	// SelfPackage is the package name of the management console itself.
	SelfPackage = "homebridge-config-ui-x"
	// HostPackage is the bridge server package.
	HostPackage = "homebridge"
	// PluginKeyword must appear in a manifest's keywords for it to be treated as a plugin.
	PluginKeyword = "homebridge-plugin"
)

var pluginNamePattern = regexp.MustCompile(`^(@[\w-]+(\.[\w-]+)*/)?homebridge-[\w-]+$`)

// ValidPluginName reports whether name follows the homebridge-<name> or
// @scope/homebridge-<name> convention.
func ValidPluginName(name string) bool {
	return pluginNamePattern.MatchString(name)
}

// UnscopedName strips a leading @scope/ from name.
func UnscopedName(name string) string {
	if strings.HasPrefix(name, "@") {
		if i := strings.IndexByte(name, '/'); i >= 0 {
			return name[i+1:]
		}
	}
	return name
}

// IsSelf reports whether name refers to the management console package, scoped or not.
func IsSelf(name string) bool {
	return strings.EqualFold(UnscopedName(name), SelfPackage)
}

// Links holds the external URLs of a package.
type Links struct {
	Registry string `json:"registry"`
	Homepage string `json:"homepage,omitempty"`
	Bugs     string `json:"bugs,omitempty"`
}

// PackageRecord is one logical package in a snapshot. Empty strings mean "absent".
type PackageRecord struct {
	Name                string            `json:"name"`
	Private             bool              `json:"private"`
	DisplayName         string            `json:"displayName,omitempty"`
	Description         string            `json:"description"`
	InstalledVersion    string            `json:"installedVersion,omitempty"`
	LatestVersion       string            `json:"latestVersion,omitempty"`
	UpdateAvailable     bool              `json:"updateAvailable"`
	BetaVersion         string            `json:"betaVersion,omitempty"`
	BetaUpdateAvailable bool              `json:"betaVersionAvailable"`
	InstallPath         string            `json:"installPath,omitempty"`
	PackagePath         string            `json:"packagePath,omitempty"`
	GlobalInstall       bool              `json:"globalInstall"`
	SettingsSchema      bool              `json:"settingsSchema"`
	Disabled            bool              `json:"disabled"`
	Verified            bool              `json:"verified"`
	Icon                string            `json:"icon,omitempty"`
	LastUpdated         *time.Time        `json:"lastUpdated,omitempty"`
	Links               Links             `json:"links"`
	Author              string            `json:"author,omitempty"`
	Funding             json.RawMessage   `json:"funding,omitempty"`
	Engines             map[string]string `json:"engines,omitempty"`
}

// Installed reports whether the record describes an installed package.
func (r *PackageRecord) Installed() bool {
	return r.InstalledVersion != ""
}

// RegistryLink returns the npm website URL for name.
func RegistryLink(name string) string {
	return "https://www.npmjs.com/package/" + name
}
