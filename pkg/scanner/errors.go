package scanner

import "fmt"

var errNotPlugin = fmt.Errorf("manifest does not declare the %q keyword", "homebridge-plugin")
