package version

import (
	"fmt"
	"runtime/debug"
)

var (
	versionHash = ""
	version     = "v0.1.0+dev"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	modified := false
	for _, v := range info.Settings {
		if v.Key == "vcs.revision" {
			versionHash = v.Value
		}
		if v.Key == "vcs.modified" && v.Value == "true" {
			modified = true
		}
	}
	if modified {
		versionHash += "-modified"
	}
}

func Get() string {
	return version
}

func GetCommitHash() string {
	return versionHash
}

// UserAgent identifies this library on every call to the platform.
func UserAgent() string {
	return fmt.Sprintf("meridian-go/%s", version)
}
