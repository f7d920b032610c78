// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ResolvePath expands a leading "~" and environment variables.
func ResolvePath(path string) string {
	if strings.HasPrefix(path, "~") {
		if usr, err := user.Current(); err == nil {
			switch {
			case path == "~":
				path = usr.HomeDir
			case strings.HasPrefix(path, "~/"):
				path = filepath.Join(usr.HomeDir, path[2:])
			}
		}
	}
	return os.ExpandEnv(path)
}

// EnsureDir creates dir (and parents) if it does not exist yet.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return os.ErrInvalid
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
