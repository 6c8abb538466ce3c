// Package director runs the billing pipeline end to end: list calendar
// events, merge training sessions, reconcile the invoice store, then
// walk the operator through billing what remains.
package director

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"invoicez/internal/billing"
	"invoicez/internal/calendar"
	appLog "invoicez/internal/log"
	"invoicez/internal/mapping"
	"invoicez/internal/merge"
	"invoicez/internal/model"
	"invoicez/internal/prompt"
	"invoicez/internal/render"
)

// Director owns one pipeline run. Every collaborator is passed in by
// the composition root; a nil renderer disables PDF generation.
type Director struct {
	calendar calendar.Calendar
	mapper   *mapping.Mapper
	biller   *billing.Biller
	renderer *render.Renderer
	prompter prompt.Prompter

	// Out receives human-facing pipeline output (invoice YAML echoes,
	// reports). Defaults to stdout.
	Out io.Writer
}

func New(cal calendar.Calendar, mapper *mapping.Mapper, biller *billing.Biller, renderer *render.Renderer, prompter prompt.Prompter) *Director {
	return &Director{
		calendar: cal,
		mapper:   mapper,
		biller:   biller,
		renderer: renderer,
		prompter: prompter,
		Out:      os.Stdout,
	}
}

// Sync runs the full interactive pipeline. Fatal errors (unsupported
// durations, orphan continuations, config gaps) abort the run; the
// store is left consistent because every write is atomic and the whole
// pipeline is re-runnable.
func (d *Director) Sync(ctx context.Context) error {
	unbilled, err := d.reconcile(ctx)
	if err != nil {
		return err
	}
	if len(unbilled) == 0 {
		appLog.Info("nothing to bill")
		return nil
	}

	for _, event := range unbilled {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := d.prompter.Confirm(fmt.Sprintf("Create an invoice for %s?", event))
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := d.billEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Reconcile runs the non-interactive passes only: prune stale links and
// link invoices by start date. This is what watch mode runs on a
// schedule.
func (d *Director) Reconcile(ctx context.Context) error {
	_, err := d.reconcile(ctx)
	return err
}

func (d *Director) reconcile(ctx context.Context) ([]model.MergedEvent, error) {
	events, err := d.calendar.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := merge.Merge(events)
	if err != nil {
		return nil, err
	}
	appLog.Info("merged calendar events", "events", len(events), "sessions", len(merged))

	pruned, err := d.mapper.PruneStaleLinks(merged)
	if err != nil {
		return nil, err
	}
	for _, inv := range pruned {
		fmt.Fprintf(d.Out, "Unlinked %s: its calendar event is gone\n", inv.InvoiceNumber)
	}

	matches, _, err := d.mapper.LinkByStartDate(merged)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		fmt.Fprintf(d.Out, "Linked %s to %s\n", match.Invoice.InvoiceNumber, match.Event)
	}

	return d.mapper.FilterUnbilled(merged, mapping.Today())
}

func (d *Director) billEvent(ctx context.Context, event model.MergedEvent) error {
	invoice, err := d.biller.Bill(event, time.Now())
	if err != nil {
		return err
	}
	if err := invoice.Write(); err != nil {
		return err
	}
	appLog.Info("invoice written", "invoice", invoice.InvoiceNumber, "path", invoice.Path)

	data, err := invoice.YAML()
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "\n%s\n", data)

	if d.renderer == nil {
		return nil
	}
	ok, err := d.prompter.Confirm("Render a PDF for this invoice?")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	pdfPath, err := d.renderer.Render(ctx, invoice)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "Wrote %s\n", pdfPath)
	return nil
}
