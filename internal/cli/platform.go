package cli

import (
	"os"
	goruntime "runtime"
)

func goos() string { return goruntime.GOOS }

func appData() string { return os.Getenv("APPDATA") }
