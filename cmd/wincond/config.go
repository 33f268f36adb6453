package main

import (
	"os"
	"path/filepath"
)

const configFileName = ".wincond.yaml"

// findConfig walks up from dir looking for a .wincond.yaml, the same
// directory-climbing convention scaf's CLI uses to find its project
// config without the caller pinning an absolute path.
func findConfig(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
