// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/LeeDigitalWorks/lockchime/cmd"
	"github.com/LeeDigitalWorks/lockchime/pkg/env"

	"github.com/getsentry/sentry-go"
)

func main() {
	err := sentry.Init(sentry.ClientOptions{
		Release:     cmd.Version,
		Environment: env.Get(),
		SampleRate:  0.1,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentry.Init: %v", err)
	}
	// Flush buffered events before the program terminates.
	defer sentry.Flush(2 * time.Second)

	cmd.Execute()
}
