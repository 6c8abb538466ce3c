package cli

import (
	"os"

	"github.com/spf13/cobra"

	"invoicez/internal/calendar"
	"invoicez/internal/prompt"
)

var selectCalendarCmd = &cobra.Command{
	Use:   "select-calendar",
	Short: "Choose which calendar to synchronize from",
	RunE:  runSelectCalendar,
}

func runSelectCalendar(cmd *cobra.Command, args []string) error {
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
	return session.SelectCalendar(ctx)
}
