package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"Niveshak/internal/api"
	"Niveshak/internal/logging"
	"Niveshak/internal/notifier"
	"Niveshak/internal/scheduler"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot, scheduled reports and HTTP API",
		Long: `Start the long-running service:
• Telegram bot answering /lists, /scan <name> and bare list names
• cron reports for every schedule entry
• HTTP API with /healthz, /api/v1/watchlists and /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			if err := a.cfg.ValidateTelegram(); err != nil {
				return err
			}
			log := logging.WithComponent(a.logger, "serve")

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID,
				a.cfg.DataSource.Proxy, logging.WithComponent(a.logger, "telegram"))

			sched := scheduler.NewScheduler(ctx, a.scanner, tn, logging.WithComponent(a.logger, "scheduler"))
			if err := sched.RegisterAll(a.cfg.Schedule); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Info("telegram polling started")

			if runOnStart {
				log.Info("run-on-start enabled, posting scheduled reports now")
				go func() {
					for _, e := range a.cfg.Schedule {
						sched.RunNow(e.Watchlist)
					}
				}()
			}

			srv := api.NewServer(a.cfg.HTTP.Addr, a.scanner, a.metrics, logging.WithComponent(a.logger, "api"))
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			log.Info("niveshak is running, press Ctrl+C to stop")
			select {
			case <-ctx.Done():
				log.Info("shutdown signal received, stopping")
			case err := <-errCh:
				if err != nil {
					return err
				}
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Stop(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "post every scheduled report once at startup")
	return cmd
}
