// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/localstate"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/recorder"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
	"github.com/LeeDigitalWorks/lockchime/pkg/statsclient"
	"github.com/LeeDigitalWorks/lockchime/pkg/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Record and read sound stats",
	Long: `Record events against a running stats service and read its counters.

Personal counters and the view mode are kept in a local state directory, so
"stats mode personal" switches every read command to this device's own
counts.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var statsTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most popular sounds",
	Long: `Show sounds ranked by plays, favorites or downloads.

Example:
  lockchime stats top --by favorites --limit 5`,
	Args: cobra.NoArgs,
	Run:  runStatsTop,
}

var statsShowCmd = &cobra.Command{
	Use:   "show <sound-id>",
	Short: "Show counters for one sound",
	Args:  cobra.ExactArgs(1),
	Run:   runStatsShow,
}

var statsRecordCmd = &cobra.Command{
	Use:   "record <sound-id> <play|download|favorite|unfavorite>",
	Short: "Record a stats event",
	Long: `Record one event. The personal mirror is updated and the event is sent
to the service before the command exits.

Example:
  lockchime stats record nintendo_mario-coin download`,
	Args: cobra.ExactArgs(2),
	Run:  runStatsRecord,
}

var statsModeCmd = &cobra.Command{
	Use:   "mode [worldwide|personal]",
	Short: "Show or set the stats view mode",
	Args:  cobra.MaximumNArgs(1),
	Run:   runStatsMode,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsTopCmd)
	statsCmd.AddCommand(statsShowCmd)
	statsCmd.AddCommand(statsRecordCmd)
	statsCmd.AddCommand(statsModeCmd)

	pf := statsCmd.PersistentFlags()
	pf.String("server", statsclient.DefaultConfig().BaseURL, "Stats service base URL")
	pf.String("state_dir", filepath.Join("~", ".lockchime", "state"), "Directory for personal stats and preferences")
	pf.Duration("debounce", recorder.DefaultConfig().Debounce, "Quiet period before queued events are sent")
	pf.Duration("timeout", statsclient.DefaultConfig().Timeout, "Request timeout")
	viper.BindPFlags(pf)

	statsTopCmd.Flags().String("by", "plays", "Ranking key: plays, favorites or downloads")
	statsTopCmd.Flags().Int("limit", 10, "Number of sounds to show")
}

// statsSession bundles what the stats subcommands share.
type statsSession struct {
	client   *statsclient.Client
	recorder *recorder.Recorder
	state    *localstate.LevelDB
}

func openStatsSession(cmd *cobra.Command, sender recorder.Sender) *statsSession {
	utils.LoadConfiguration("lockchime", false)
	f := NewFlagLoader(cmd)

	clientCfg := statsclient.DefaultConfig()
	clientCfg.BaseURL = f.String("server")
	clientCfg.Timeout = f.Duration("timeout")
	client := statsclient.New(clientCfg)

	state, err := localstate.OpenLevelDB(f.String("state_dir"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open local state")
	}

	if sender == nil {
		sender = client
	}
	recCfg := recorder.DefaultConfig()
	recCfg.Debounce = f.Duration("debounce")

	return &statsSession{
		client:   client,
		recorder: recorder.New(recCfg, sender, client, state),
		state:    state,
	}
}

func (s *statsSession) Close(ctx context.Context) {
	s.recorder.Close(ctx)
	if err := s.state.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close local state")
	}
}

// refresh loads the worldwide view when the mode needs it.
func (s *statsSession) refresh(ctx context.Context) {
	if s.recorder.Mode() != recorder.ModeWorldwide {
		return
	}
	if err := s.recorder.Refresh(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to fetch stats")
	}
}

func runStatsTop(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	s := openStatsSession(cmd, nil)
	defer s.Close(ctx)
	s.refresh(ctx)

	by, _ := cmd.Flags().GetString("by")
	limit, _ := cmd.Flags().GetInt("limit")

	var ranked []stats.Ranked
	switch by {
	case "plays":
		ranked = s.recorder.TopSounds(limit)
	case "favorites":
		ranked = s.recorder.TopFavorited(limit)
	case "downloads":
		source := s.recorder.Personal()
		if s.recorder.Mode() == recorder.ModeWorldwide {
			source = s.recorder.Worldwide().Sounds
		}
		ranked = stats.TopByDownloads(source, limit)
	default:
		logger.Fatal().Str("by", by).Msg("--by must be plays, favorites or downloads")
	}

	title := fmt.Sprintf("Top %d by %s (%s)", limit, by, s.recorder.Mode())
	renderRanking(cmd.OutOrStdout(), title, ranked, s.recorder.Totals())
}

func runStatsShow(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	s := openStatsSession(cmd, nil)
	defer s.Close(ctx)
	s.refresh(ctx)

	id := args[0]
	renderSound(cmd.OutOrStdout(), id, s.recorder.Mode(), stats.SoundCounters{
		Plays:     s.recorder.PlayCount(id),
		Downloads: s.recorder.DownloadCount(id),
		Favorites: s.recorder.FavoriteCount(id),
	})
}

// printingSender sends through the client and reports each server answer.
type printingSender struct {
	client *statsclient.Client
	out    io.Writer
}

func (p *printingSender) Send(ctx context.Context, ev recorder.Event) error {
	resp, err := p.client.Record(ctx, ev.SoundID, ev.Event)
	if err != nil {
		fmt.Fprintf(p.out, "%s %s: failed: %v\n", ev.Event, ev.SoundID, err)
		return err
	}
	if resp.Sampled {
		fmt.Fprintf(p.out, "%s %s: accepted (not sampled)\n", ev.Event, ev.SoundID)
		return nil
	}
	fmt.Fprintf(p.out, "%s %s: %s\n", ev.Event, ev.SoundID, formatCounters(*resp.Stats))
	return nil
}

func runStatsRecord(cmd *cobra.Command, args []string) {
	event, ok := stats.ParseEventType(args[1])
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "unknown event %q\n", args[1])
		os.Exit(2)
	}

	sender := &printingSender{out: cmd.OutOrStdout()}
	s := openStatsSession(cmd, sender)
	sender.client = s.client

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	defer s.Close(ctx)

	s.recorder.RecordEvent(args[0], event)
}

func runStatsMode(cmd *cobra.Command, args []string) {
	s := openStatsSession(cmd, nil)
	defer s.Close(cmd.Context())

	if len(args) == 1 {
		mode := recorder.Mode(args[0])
		if mode != recorder.ModeWorldwide && mode != recorder.ModePersonal {
			fmt.Fprintf(cmd.ErrOrStderr(), "mode must be worldwide or personal\n")
			os.Exit(2)
		}
		s.recorder.SetMode(mode)
	}
	fmt.Fprintln(cmd.OutOrStdout(), s.recorder.Mode())
}
