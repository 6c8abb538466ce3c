package cli

import (
	"os"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"invoicez/internal/billing"
	"invoicez/internal/calendar"
	"invoicez/internal/director"
	appLog "invoicez/internal/log"
	"invoicez/internal/mapping"
	"invoicez/internal/prompt"
	"invoicez/internal/render"
)

var watch bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the invoice store with the calendar",
	Long: `Lists the calendar events, merges multi-week sessions, prunes stale
calendar links, links unlinked invoices by start date and offers to bill
every session that ended without an invoice.

With --watch the non-interactive reconciliation (prune + link) runs on
the sync_cron schedule until interrupted.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&watch, "watch", false, "Reconcile on the sync_cron schedule instead of running once")
}

func runSync(cmd *cobra.Command, args []string) error {
	paths, settings, err := loadEnvironment()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	prompter := prompt.NewTerminal(os.Stdin, os.Stdout)
	session, err := calendar.New(ctx, paths, settings, prompter)
	if err != nil {
		return err
	}
	d := director.New(
		session,
		mapping.New(paths, settings),
		billing.New(paths, settings, prompter),
		render.New(paths, settings),
		prompter,
	)

	if !watch {
		return d.Sync(ctx)
	}

	// Watch mode never prompts; it keeps the store reconciled and
	// leaves billing to interactive runs.
	if err := d.Reconcile(ctx); err != nil {
		return err
	}
	scheduler := cron.New()
	_, err = scheduler.AddFunc(settings.SyncCron, func() {
		if err := d.Reconcile(ctx); err != nil {
			appLog.Error("scheduled reconciliation failed", err)
		}
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	appLog.Info("watching the calendar", "cron", settings.SyncCron)

	<-ctx.Done()
	<-scheduler.Stop().Done()
	appLog.Info("watch stopped")
	return nil
}
