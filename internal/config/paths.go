package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandPath resolves environment variables and a leading "~/" in a
// user-supplied path such as --config.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}

	expanded := os.ExpandEnv(trimmed)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := resolveHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(expanded, "~"), "/"))
	}

	return filepath.Clean(expanded), nil
}

// resolveHomeDir prefers os.UserHomeDir, then the passwd entry, then $HOME.
// A value that still starts with "~" is treated as unresolved.
func resolveHomeDir() (string, error) {
	candidates := make([]string, 0, 2)
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, home)
	}
	if current, err := user.Current(); err == nil {
		candidates = append(candidates, current.HomeDir)
	}
	for _, c := range candidates {
		if resolved(c) {
			return strings.TrimSpace(c), nil
		}
	}

	envHome := strings.TrimSpace(os.Getenv("HOME"))
	if envHome == "" {
		return "", fmt.Errorf("HOME is not set")
	}
	if !resolved(envHome) {
		return "", fmt.Errorf("HOME is not fully resolved: %s", envHome)
	}
	return envHome, nil
}

func resolved(home string) bool {
	home = strings.TrimSpace(home)
	return home != "" && home != "~" && !strings.HasPrefix(home, "~/")
}
