package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// windowsVar matches %VAR% references.
var windowsVar = regexp.MustCompile(`%([^%]+)%`)

// expandPath expands $VAR references and a leading ~ in p. On Windows it
// also accepts ~\ and %VAR%. Unknown %VAR% references are left as is.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = windowsVar.ReplaceAllStringFunc(p, func(ref string) string {
			if val, ok := os.LookupEnv(ref[1 : len(ref)-1]); ok {
				return val
			}
			return ref
		})
	}

	rest, ok := trimHome(p)
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}

// trimHome reports whether p starts at the home directory and returns the
// remainder.
func trimHome(p string) (string, bool) {
	switch {
	case p == "~":
		return "", true
	case strings.HasPrefix(p, "~/"):
		return p[2:], true
	case runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`):
		return p[2:], true
	}
	return "", false
}

// absPath expands p and makes it absolute against root.
func absPath(root, p string) string {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
