// Package manifest reads the per-package metadata documents found in a plugin
// directory: package.json and config.schema.json.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/glorpus-work/hbpm/pkg/errors"
)

const (
	// PackageFile is the npm manifest file name.
	PackageFile = "package.json"
	// SchemaFile is the plugin settings schema file name.
	SchemaFile = "config.schema.json"
)

// PackageJSON is the subset of package.json the engine reads.
type PackageJSON struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Private     bool              `json:"private"`
	DisplayName string            `json:"displayName"`
	Description string            `json:"description"`
	Keywords    []string          `json:"keywords"`
	Homepage    string            `json:"homepage"`
	Bugs        URLField          `json:"bugs"`
	Repository  URLField          `json:"repository"`
	Author      Person            `json:"author"`
	Funding     json.RawMessage   `json:"funding,omitempty"`
	Engines     map[string]string `json:"engines,omitempty"`
}

// URLField accepts both "https://..." and {"url": "https://..."}.
type URLField struct {
	URL string
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *URLField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		u.URL = s
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// tolerate unexpected shapes
		return nil
	}
	u.URL = obj.URL
	return nil
}

// MarshalJSON implements json.Marshaler.
func (u URLField) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.URL)
}

// Person accepts both "Name <email> (url)" and {"name": "..."}.
type Person struct {
	Name string
}

var personPattern = regexp.MustCompile(`^([^<(]*)`)

// UnmarshalJSON implements json.Unmarshaler.
func (p *Person) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Name = strings.TrimSpace(personPattern.FindString(s))
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	p.Name = obj.Name
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Person) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Name)
}

// HasKeyword reports whether the manifest lists keyword.
func (p *PackageJSON) HasKeyword(keyword string) bool {
	for _, k := range p.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// RepositoryURL returns the repository URL normalised to https, or "".
func (p *PackageJSON) RepositoryURL() string {
	u := strings.TrimSpace(p.Repository.URL)
	if u == "" {
		return ""
	}
	u = strings.TrimPrefix(u, "git+")
	u = strings.TrimSuffix(u, ".git")
	switch {
	case strings.HasPrefix(u, "git://"):
		u = "https://" + strings.TrimPrefix(u, "git://")
	case strings.HasPrefix(u, "git@github.com:"):
		u = "https://github.com/" + strings.TrimPrefix(u, "git@github.com:")
	case strings.HasPrefix(u, "github:"):
		u = "https://github.com/" + strings.TrimPrefix(u, "github:")
	case !strings.Contains(u, "://") && strings.Count(u, "/") == 1:
		u = "https://github.com/" + u
	}
	return u
}

// ParsePackageJSON decodes a package.json document.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", errors.ErrValidation, PackageFile, err)
	}
	return &pkg, nil
}

// ReadPackageJSON reads dir/package.json. A missing file yields an error wrapping ErrNotFound.
func ReadPackageJSON(dir string) (*PackageJSON, error) {
	path := filepath.Join(dir, PackageFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotFoundWithName("manifest", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	pkg, err := ParsePackageJSON(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return pkg, nil
}
