// Package billing turns one unbilled merged event into a priced invoice
// draft ready to be written to the store.
package billing

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"invoicez/internal/config"
	appLog "invoicez/internal/log"
	"invoicez/internal/model"
	"invoicez/internal/prompt"
)

type Biller struct {
	paths    *config.Paths
	settings *config.Settings
	prompter prompt.Prompter
}

func New(paths *config.Paths, settings *config.Settings, prompter prompt.Prompter) *Biller {
	return &Biller{paths: paths, settings: settings, prompter: prompter}
}

// stringContext is what the settings' invoice string templates see.
type stringContext struct {
	Company  model.Company
	Training model.Training
}

// nameContext is what invoice_name_format_string sees.
type nameContext struct {
	InvoiceNumber string
	Ref           string
	Company       model.Company
	Training      model.Training
}

// Bill prices a merged event into an invoice draft dated now. The
// reference is taken from the event description (parsed as YAML) when
// present, otherwise asked interactively. A training, company or rate
// missing from the settings fails with a ConfigError.
func (b *Biller) Bill(event model.MergedEvent, now time.Time) (model.Invoice, error) {
	extra := parseDescription(event)

	training, err := b.settings.GetTraining(event.Training)
	if err != nil {
		return model.Invoice{}, err
	}
	company, err := b.settings.GetCompany(event.Company)
	if err != nil {
		return model.Invoice{}, err
	}
	rate, err := b.settings.GetRate(training.Rate)
	if err != nil {
		return model.Invoice{}, err
	}

	invoiceNumber, err := b.nextInvoiceNumber(now)
	if err != nil {
		return model.Invoice{}, err
	}

	ref, ok := extra["ref"].(string)
	if !ok || ref == "" {
		ref, err = b.prompter.Ask("Enter the reference that we should mention on the invoice")
		if err != nil {
			return model.Invoice{}, err
		}
	}

	items, err := b.produceMainItems(event, company, training, rate)
	if err != nil {
		return model.Invoice{}, err
	}

	description, err := renderString(b.settings.Strings.Invoice.Description,
		stringContext{Company: company, Training: training})
	if err != nil {
		return model.Invoice{}, err
	}

	name, err := renderString(b.settings.InvoiceNameFormat, nameContext{
		InvoiceNumber: invoiceNumber,
		Ref:           ref,
		Company:       company,
		Training:      training,
	})
	if err != nil {
		return model.Invoice{}, err
	}

	return model.Invoice{
		Path:          filepath.Join(b.paths.GcalYmlsDir, name+".yml"),
		InvoiceNumber: invoiceNumber,
		Description:   description,
		Company:       event.Company,
		Ref:           ref,
		Date:          model.DateOf(now),
		GcalInfo:      &model.GcalInfo{Link: event.Link, EventID: event.ID},
		Items:         items,
	}, nil
}

// parseDescription reads the event description as a YAML mapping. A
// description that does not parse is a warning, not an error: the event
// simply has no structured extra data.
func parseDescription(event model.MergedEvent) map[string]any {
	if event.Description == "" {
		return map[string]any{}
	}
	var extra map[string]any
	if err := yaml.Unmarshal([]byte(event.Description), &extra); err != nil || extra == nil {
		appLog.Warn("could not parse the event description as yml", "event", event.String())
		return map[string]any{}
	}
	return extra
}

// produceMainItems splits the session's dated entries by duration unit
// into at most two line items: whole days priced at the training-day
// rate and half-days at half that rate, fractions truncated.
func (b *Biller) produceMainItems(
	event model.MergedEvent,
	company model.Company,
	training model.Training,
	rate model.Rate,
) ([]model.Item, error) {
	var wholeDays, halfDays model.DateList
	for i, start := range event.Starts {
		duration := event.Durations[i]
		switch duration.Unit {
		case model.UnitDay:
			for d := 0; d < duration.N; d++ {
				wholeDays = append(wholeDays, model.DateOf(start).AddDays(d))
			}
		case model.UnitHalfDay:
			for d := 0; d < duration.N; d++ {
				halfDays = append(halfDays, model.DateOf(start))
			}
		}
	}
	if err := checkNoOverlap(event, wholeDays); err != nil {
		return nil, err
	}
	if err := checkNoOverlap(event, halfDays); err != nil {
		return nil, err
	}

	ctx := stringContext{Company: company, Training: training}
	var items []model.Item
	if len(wholeDays) > 0 {
		description, err := renderString(b.settings.Strings.Invoice.TrainingDay, ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, model.Item{
			Date:        &model.ItemDate{Start: wholeDays},
			Description: description,
			N:           len(wholeDays),
			UnitPrice:   rate.TrainingDay,
		})
	}
	if len(halfDays) > 0 {
		description, err := renderString(b.settings.Strings.Invoice.HalfTrainingDay, ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, model.Item{
			Date:        &model.ItemDate{Start: halfDays},
			Description: description,
			N:           len(halfDays),
			UnitPrice:   rate.TrainingDay / 2,
		})
	}
	return items, nil
}

func checkNoOverlap(event model.MergedEvent, dates model.DateList) error {
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		if seen[d.String()] {
			return fmt.Errorf("event %s has overlapping dates (%s)", event.String(), d)
		}
		seen[d.String()] = true
	}
	return nil
}

// nextInvoiceNumber scans every invoice file for numbers sharing the
// current year-month prefix and returns the next one, zero-padded to
// three digits: 2026-03-004.
func (b *Biller) nextInvoiceNumber(now time.Time) (string, error) {
	prefix := now.Format("2006-01")
	count := 0
	for _, dir := range []string{b.paths.GcalYmlsDir, b.paths.ExtraYmlsDir} {
		invoices, err := model.LoadInvoicesDir(dir)
		if err != nil {
			return "", err
		}
		for _, inv := range invoices {
			if strings.HasPrefix(inv.InvoiceNumber, prefix) {
				count++
			}
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, count+1), nil
}

func renderString(tmpl string, ctx any) (string, error) {
	parsed, err := template.New("string").Parse(tmpl)
	if err != nil {
		return "", model.NewConfigError("could not parse template %q: %v", tmpl, err)
	}
	var out strings.Builder
	if err := parsed.Execute(&out, ctx); err != nil {
		return "", model.NewConfigError("could not render template %q: %v", tmpl, err)
	}
	return strings.TrimSpace(out.String()), nil
}
