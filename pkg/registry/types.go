package registry

import (
	"encoding/json"

	"github.com/glorpus-work/hbpm/pkg/manifest"
)

// Packument is the registry document for one package.
type Packument struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	DistTags    map[string]string      `json:"dist-tags"`
	Versions    map[string]VersionInfo `json:"versions"`
	Time        map[string]string      `json:"time"`
	Homepage    string                 `json:"homepage"`
	Bugs        manifest.URLField      `json:"bugs"`
	Repository  manifest.URLField      `json:"repository"`
	Author      manifest.Person        `json:"author"`
	Keywords    []string               `json:"keywords"`
}

// VersionInfo is one entry of Packument.Versions.
type VersionInfo struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Deprecated  string            `json:"deprecated,omitempty"`
	Engines     map[string]string `json:"engines,omitempty"`
	Funding     json.RawMessage   `json:"funding,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
}

// Versions summarises the published versions of a package.
type Versions struct {
	Tags     map[string]string            `json:"tags"`
	Versions []string                     `json:"versions"`
	Engines  map[string]map[string]string `json:"engines,omitempty"`
}

type searchResponse struct {
	Objects []struct {
		Package searchPackage `json:"package"`
	} `json:"objects"`
	Total int `json:"total"`
}

type searchPackage struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Date        string   `json:"date"`
	Links       struct {
		NPM        string `json:"npm"`
		Homepage   string `json:"homepage"`
		Repository string `json:"repository"`
		Bugs       string `json:"bugs"`
	} `json:"links"`
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
	Publisher struct {
		Username string `json:"username"`
	} `json:"publisher"`
}
