// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/api"
	"github.com/LeeDigitalWorks/lockchime/pkg/audio"
	"github.com/LeeDigitalWorks/lockchime/pkg/catalog"
	"github.com/LeeDigitalWorks/lockchime/pkg/counterstore"
	"github.com/LeeDigitalWorks/lockchime/pkg/debug"
	"github.com/LeeDigitalWorks/lockchime/pkg/env"
	"github.com/LeeDigitalWorks/lockchime/pkg/events"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
	"github.com/LeeDigitalWorks/lockchime/pkg/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ServeOpts holds all configuration for the aggregation service.
type ServeOpts struct {
	// Network binding
	BindAddr  string // Interface to listen on
	HTTPPort  int    // Public API port
	DebugPort int    // Metrics and health port

	Stats stats.Config

	// Counter store. Empty Redis.Addr selects the in-process store.
	Redis counterstore.RedisConfig

	// Sound catalog and audio proxy
	Proxy   bool
	Catalog catalog.Config
	Audio   audio.Config

	// Live event fan-out
	Events events.Config
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stats service",
	Long: `Start the aggregation service that records sound plays, downloads and
favorites and serves the counters. With --proxy it also serves the sound
catalog and proxies audio files.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()

	// Network binding
	f.String("bind_addr", "0.0.0.0", "Interface to bind HTTP servers to")
	f.Int("http_port", 8080, "Public API port")
	f.Int("debug_port", 8090, "Debug/metrics HTTP port")

	// Counter store
	f.String("redis_addr", "", "Redis address (host:port). Empty uses an in-memory store.")
	f.String("redis_password", "", "Redis password")
	f.Int("redis_db", 0, "Redis database number")
	f.String("stats_key", "stats:_all", "Redis key holding the stats snapshot")
	f.String("redis_compression", "none", "Compression for the stored snapshot: none, zstd, s2 or lz4")
	f.Duration("store_timeout", 5*time.Second, "Timeout for each counter store operation")

	// Aggregation
	f.Float64("sample_rate", 0.2, "Fraction of play events recorded; accepted plays count 1/sample_rate")
	f.Float64("rate_limit_rps", 5, "Per-IP write requests per second (0 disables)")
	f.Int("rate_limit_burst", 20, "Per-IP write burst")
	f.StringSlice("trusted_proxies", nil, "CIDRs or IPs of reverse proxies whose X-Forwarded-For is believed")

	// Catalog and audio proxy
	defCatalog := catalog.DefaultConfig()
	defAudio := audio.DefaultConfig()
	f.Bool("proxy", true, "Serve /api/sounds and /api/audio")
	f.String("catalog_url", defCatalog.URL, "Upstream sound gallery page")
	f.Duration("catalog_ttl", defCatalog.TTL, "How long a catalog scrape is served")
	f.String("audio_primary_url", defAudio.PrimaryURL, "Base URL of mirrored sound files")
	f.String("audio_fallback_url", defAudio.FallbackURL, "Upstream audio directory")
	f.StringSlice("audio_fallback_dirs", defAudio.FallbackDirs, "Category directories tried under audio_fallback_url")
	f.Int("audio_cache_entries", defAudio.CacheEntries, "Audio files kept in memory (0 disables)")

	// Event publishing
	defEvents := events.DefaultConfig()
	f.String("events_redis_addr", "", "Redis address for publishing recorded events (empty disables)")
	f.String("events_redis_channel", defEvents.Redis.Channel, "Channel prefix for recorded events")
	f.StringSlice("kafka_brokers", nil, "Kafka brokers for publishing recorded events (empty disables)")
	f.String("kafka_topic", defEvents.Kafka.Topic, "Kafka topic for recorded events")
	f.String("kafka_compression", defEvents.Kafka.Compression, "Kafka compression: none, gzip, snappy, lz4 or zstd")
	f.String("kafka_sasl_mechanism", "", "Kafka SASL mechanism: PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512")
	f.String("kafka_sasl_username", "", "Kafka SASL username")
	f.String("kafka_sasl_password", "", "Kafka SASL password")
	f.Bool("kafka_tls", false, "Use TLS for Kafka connections")
	f.Int("events_buffer", defEvents.BufferSize, "Recorded events buffered for publishing")

	viper.BindPFlags(f)
}

func runServe(cmd *cobra.Command, args []string) {
	utils.LoadConfiguration("lockchime", false)
	opts := loadServeOpts(cmd)

	debug.SetNotReady()

	store, closeStore := openCounterStore(opts.Redis)
	defer closeStore()

	var svcOpts []stats.Option
	emitter := startEmitter(opts.Events)
	if emitter != nil {
		svcOpts = append(svcOpts, stats.WithNotifier(emitter))
	}
	svc := stats.NewService(opts.Stats, store, svcOpts...)

	var serverOpts []api.ServerOption
	if opts.Proxy {
		cat, err := catalog.New(opts.Catalog, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid catalog configuration")
		}
		res, err := audio.NewResolver(opts.Audio, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid audio configuration")
		}
		serverOpts = append(serverOpts, api.WithCatalog(cat), api.WithAudio(res))
	}
	server := api.NewServer(opts.Stats, svc, serverOpts...)

	logger.Info().
		Str("version", VersionInfo()["version"]).
		Str("env", env.Get()).
		Float64("sample_rate", opts.Stats.SampleRate).
		Float64("rate_limit_rps", opts.Stats.RateLimitRPS).
		Bool("redis", opts.Redis.Addr != "").
		Bool("proxy", opts.Proxy).
		Bool("events", emitter != nil).
		Msg("Stats service configuration")

	httpServer := startHTTPServer(server.Handler(), opts.BindAddr, opts.HTTPPort)
	debugServer := startHTTPServer(debug.GetMux(), opts.BindAddr, opts.DebugPort)

	debug.SetReady()

	waitForShutdown()

	debug.SetNotReady()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
	debugServer.Shutdown(ctx)
	if emitter != nil {
		if err := emitter.Stop(ctx); err != nil {
			logger.Warn().Err(err).Msg("event emitter did not stop cleanly")
		}
	}
}

func loadServeOpts(cmd *cobra.Command) ServeOpts {
	f := NewFlagLoader(cmd)

	statsCfg := stats.Config{
		SampleRate:     f.Float64("sample_rate"),
		RateLimitRPS:   f.Float64("rate_limit_rps"),
		RateLimitBurst: f.Int("rate_limit_burst"),
		TrustedProxies: f.StringSlice("trusted_proxies"),
		StoreTimeout:   f.Duration("store_timeout"),
	}
	statsCfg.Validate()

	redisCfg := counterstore.DefaultRedisConfig(f.String("redis_addr"))
	redisCfg.Password = f.String("redis_password")
	redisCfg.DB = f.Int("redis_db")
	redisCfg.Compression = f.String("redis_compression")
	if key := f.String("stats_key"); key != "" {
		redisCfg.Key = key
	}

	catalogCfg := catalog.DefaultConfig()
	catalogCfg.URL = f.String("catalog_url")
	catalogCfg.TTL = f.Duration("catalog_ttl")

	audioCfg := audio.DefaultConfig()
	audioCfg.PrimaryURL = f.String("audio_primary_url")
	audioCfg.FallbackURL = f.String("audio_fallback_url")
	audioCfg.FallbackDirs = f.StringSlice("audio_fallback_dirs")
	audioCfg.CacheEntries = f.Int("audio_cache_entries")

	eventsCfg := events.DefaultConfig()
	eventsCfg.BufferSize = f.Int("events_buffer")
	if addr := f.String("events_redis_addr"); addr != "" {
		eventsCfg.Redis.Enabled = true
		eventsCfg.Redis.Addr = addr
	}
	eventsCfg.Redis.Channel = f.String("events_redis_channel")
	if brokers := f.StringSlice("kafka_brokers"); len(brokers) > 0 {
		eventsCfg.Kafka.Enabled = true
		eventsCfg.Kafka.Brokers = brokers
	}
	eventsCfg.Kafka.Topic = f.String("kafka_topic")
	eventsCfg.Kafka.Compression = f.String("kafka_compression")
	eventsCfg.Kafka.SASLMechanism = f.String("kafka_sasl_mechanism")
	eventsCfg.Kafka.SASLUsername = f.String("kafka_sasl_username")
	eventsCfg.Kafka.SASLPassword = f.String("kafka_sasl_password")
	eventsCfg.Kafka.TLS = f.Bool("kafka_tls")
	eventsCfg.Enabled = eventsCfg.HasPublishers()
	eventsCfg.Validate()

	return ServeOpts{
		BindAddr:  f.String("bind_addr"),
		HTTPPort:  f.Int("http_port"),
		DebugPort: f.Int("debug_port"),
		Stats:     statsCfg,
		Redis:     redisCfg,
		Proxy:     f.Bool("proxy"),
		Catalog:   catalogCfg,
		Audio:     audioCfg,
		Events:    eventsCfg,
	}
}

// startEmitter connects the configured event publishers. It returns nil
// when publishing is off.
func startEmitter(cfg events.Config) *events.Emitter {
	if !cfg.Enabled {
		return nil
	}
	pubs, err := events.NewPublishers(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect event publishers")
	}
	emitter := events.NewEmitter(cfg, pubs...)
	emitter.Start()
	return emitter
}

// openCounterStore connects to Redis when configured and falls back to the
// in-process store otherwise.
func openCounterStore(cfg counterstore.RedisConfig) (stats.Store, func()) {
	if cfg.Addr == "" {
		logger.Warn().Msg("No redis_addr configured - counters are kept in memory and lost on restart")
		return counterstore.NewMemoryStore(), func() {}
	}

	rs, err := counterstore.NewRedisStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("redis_addr", cfg.Addr).Msg("failed to connect to redis")
	}
	debug.AddReadyCheck("redis", func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return rs.Ping(ctx) == nil
	})
	return rs, func() {
		if err := rs.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}

func startHTTPServer(handler http.Handler, ip string, port int) *http.Server {
	listener, err := utils.NewListener(utils.JoinHostPort(ip, port), 0)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create HTTP listener")
	}

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("http_addr", utils.JoinHostPort(ip, port)).Msg("Starting HTTP server")
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start HTTP server")
		}
	}()
	return httpServer
}

func waitForShutdown() {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM)
	<-stopChan
}
