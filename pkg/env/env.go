// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package env reports the deployment environment from LOCKCHIME_ENV,
// falling back to ENV and then "local".
package env

import (
	"sync"

	"github.com/spf13/viper"
)

const (
	Local      = "local"
	Production = "production"
	Testing    = "testing"
)

var (
	current string
	once    sync.Once
)

// Get returns the environment name, resolved once per process.
func Get() string {
	once.Do(func() {
		current = resolve()
	})
	return current
}

func resolve() string {
	v := viper.New()
	v.BindEnv("env", "LOCKCHIME_ENV", "ENV")
	if e := v.GetString("env"); e != "" {
		return e
	}
	return Local
}

func IsLocal() bool {
	return Get() == Local
}

func IsProduction() bool {
	return Get() == Production
}
