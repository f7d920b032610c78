// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagLoader_Precedence(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("server", "http://default", "")
	cmd.Flags().Float64("sample_rate", 0.2, "")
	cmd.Flags().Duration("debounce", time.Second, "")
	require.NoError(t, viper.BindPFlags(cmd.Flags()))

	viper.Set("server", "http://config")
	require.NoError(t, cmd.Flags().Set("sample_rate", "0.5"))

	f := NewFlagLoader(cmd)
	assert.Equal(t, "http://config", f.String("server"))
	assert.Equal(t, 0.5, f.Float64("sample_rate"))
	assert.Equal(t, time.Second, f.Duration("debounce"))
}
