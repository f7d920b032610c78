// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"testing"

	"github.com/LeeDigitalWorks/lockchime/pkg/recorder"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"

	"github.com/stretchr/testify/assert"
)

func TestRenderRanking(t *testing.T) {
	var buf bytes.Buffer
	renderRanking(&buf, "Top 2 by plays (worldwide)", []stats.Ranked{
		{SoundID: "nintendo_mario-coin", Stats: stats.SoundCounters{Plays: 12345, Downloads: 3}},
		{SoundID: "chime", Stats: stats.SoundCounters{Plays: 7, Favorites: 1}},
	}, stats.GlobalCounters{TotalPlays: 12352, TotalDownloads: 3, TotalFavorites: 1})

	out := buf.String()
	assert.Contains(t, out, "Top 2 by plays (worldwide)")
	assert.Contains(t, out, "nintendo_mario-coin")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "Total: 12,352 plays, 3 downloads, 1 favorites")
}

func TestRenderRanking_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderRanking(&buf, "Top 10 by favorites (personal)", nil, stats.GlobalCounters{})
	assert.Contains(t, buf.String(), "no sounds yet")
}

func TestRenderSound(t *testing.T) {
	var buf bytes.Buffer
	renderSound(&buf, "pokemon_pikachu", recorder.ModePersonal, stats.SoundCounters{Plays: 2, Favorites: 1})

	out := buf.String()
	assert.Contains(t, out, "pokemon_pikachu")
	assert.Contains(t, out, "personal, category pokemon")
	assert.Contains(t, out, "2 plays, 0 downloads, 1 favorites")
}
