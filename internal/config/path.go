package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigDirs returns the directories searched for pollbus.* when no
// config path is given, most specific first.
func DefaultConfigDirs() []string {
	dirs := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "pollbus"))
	} else if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "pollbus"))
	}
	if isDir("/etc/pollbus") {
		dirs = append(dirs, "/etc/pollbus")
	}
	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
