package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/dashboard"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/notify"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/notify/discord"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/notify/slack"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the board server",
		Long: `Serves the web board, the JSON API, and the SSE streams, and runs the
notification watcher and the scheduled-post sweep until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if port == 0 {
		port = cfg.Dashboard.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Chat adapters are enabled by their config tokens; a board with no
	// tokens runs silently.
	var adapters []notify.Adapter
	if cfg.Notify.Slack.BotToken != "" {
		a, err := slack.New(slack.AdapterOpts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.Channel,
		})
		if err != nil {
			return err
		}
		adapters = append(adapters, a)
	}
	if cfg.Notify.Discord.BotToken != "" {
		a, err := discord.New(discord.AdapterOpts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.Channel,
		})
		if err != nil {
			return err
		}
		adapters = append(adapters, a)
	}

	notifier := notify.NewNotifier(adapters...)
	notifier.Connect(ctx)
	defer notifier.Close()

	watcher, err := notify.NewWatcher(notify.WatcherOpts{Store: s, Notifier: notifier})
	if err != nil {
		return err
	}
	go func() {
		if err := watcher.Run(ctx); err != nil {
			log.Printf("serve: watcher: %v", err)
		}
	}()

	sweep, err := scheduler.New(scheduler.Opts{
		Store:    s,
		Notifier: notifier,
		Cron:     cfg.Scheduler.Cron,
	})
	if err != nil {
		return err
	}
	go func() {
		if err := sweep.Run(ctx); err != nil {
			log.Printf("serve: scheduler: %v", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving project %q with %d notification adapters\n", cfg.Project, len(adapters))

	return dashboard.Start(ctx, dashboard.StartOpts{
		Store:  s,
		Config: cfg,
		Port:   port,
		Out:    cmd.OutOrStdout(),
	})
}
