// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/LeeDigitalWorks/lockchime/pkg/recorder"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	rankStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Width(4).
			Align(lipgloss.Right)

	nameStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Width(36)

	countStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Width(10).
			Align(lipgloss.Right)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

func formatCounters(c stats.SoundCounters) string {
	return fmt.Sprintf("%s plays, %s downloads, %s favorites",
		humanize.Comma(c.Plays), humanize.Comma(c.Downloads), humanize.Comma(c.Favorites))
}

func renderRanking(w io.Writer, title string, ranked []stats.Ranked, totals stats.GlobalCounters) {
	lines := []string{titleStyle.Render(title)}

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		rankStyle.Render("#"),
		nameStyle.Render("Sound"),
		countStyle.Render("Plays"),
		countStyle.Render("Downloads"),
		countStyle.Render("Favorites"),
	)
	lines = append(lines, mutedStyle.Render(header))

	if len(ranked) == 0 {
		lines = append(lines, mutedStyle.Render("  no sounds yet"))
	}
	for i, r := range ranked {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Left,
			rankStyle.Render(fmt.Sprintf("%d", i+1)),
			nameStyle.Render(r.SoundID),
			countStyle.Render(humanize.Comma(r.Stats.Plays)),
			countStyle.Render(humanize.Comma(r.Stats.Downloads)),
			countStyle.Render(humanize.Comma(r.Stats.Favorites)),
		))
	}

	summary := fmt.Sprintf("Total: %s plays, %s downloads, %s favorites",
		humanize.Comma(totals.TotalPlays), humanize.Comma(totals.TotalDownloads), humanize.Comma(totals.TotalFavorites))
	if !totals.LastUpdated.IsZero() {
		summary += ", updated " + humanize.Time(totals.LastUpdated)
	}
	lines = append(lines, "", mutedStyle.Render(summary))

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

func renderSound(w io.Writer, soundID string, mode recorder.Mode, c stats.SoundCounters) {
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(soundID),
		mutedStyle.Render(fmt.Sprintf("%s, category %s", mode, stats.Category(soundID))),
		formatCounters(c),
	))
}
