package director

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"invoicez/internal/billing"
	"invoicez/internal/calendar"
	"invoicez/internal/config"
	"invoicez/internal/mapping"
	"invoicez/internal/model"
)

const testPattern = `^(?P<continuation>-> )?(?P<company>[^-]+) - (?P<training>[^-]+) - (?P<place>[^-]+?)(?: - (?P<extra>.+))?$`

// scriptedPrompter confirms everything and answers free-form questions
// from a canned list.
type scriptedPrompter struct {
	confirms int
	answers  []string
}

func (p *scriptedPrompter) Confirm(string) (bool, error) {
	p.confirms++
	return true, nil
}

func (p *scriptedPrompter) Ask(string) (string, error) {
	if len(p.answers) == 0 {
		return "", nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *scriptedPrompter) AskInt(string, int, int) (int, error) { return 1, nil }

func testSettings() *config.Settings {
	s := &config.Settings{
		TitlePattern:      testPattern,
		InvoiceNameFormat: "{{.InvoiceNumber}}-{{.Company.Name}}",
		Companies: map[string]model.Company{
			"acme": {Name: "ACME"},
		},
		Trainings: map[string]model.Training{
			"go basics": {Name: "Go Basics", Rate: "standard", Company: "acme"},
		},
		Rates: map[string]model.Rate{
			"standard": {TrainingDay: 1500},
		},
		Strings: config.Strings{Invoice: config.InvoiceStrings{
			TrainingDay:     `Day of "{{.Training.Name}}" training`,
			HalfTrainingDay: `Half-day of "{{.Training.Name}}" training`,
			Description:     `Invoice for the "{{.Training.Name}}" training session`,
		}},
	}
	s.Normalize()
	return s
}

func newTestDirector(t *testing.T, prompter *scriptedPrompter) (*Director, *config.Paths) {
	t.Helper()

	paths, err := config.NewPaths(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{paths.GcalYmlsDir, paths.ExtraYmlsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	// A billable 4-day session that ended a month ago.
	start := time.Now().UTC().AddDate(0, 0, -34)
	raws := []model.RawEvent{{
		ID:      "session-1",
		Summary: "ACME - Go Basics - Paris",
		Start:   model.RawEventTime{Date: start.Format("2006-01-02")},
		End:     model.RawEventTime{Date: start.AddDate(0, 0, 4).Format("2006-01-02")},
	}}
	data, err := json.Marshal(raws)
	if err != nil {
		t.Fatal(err)
	}
	fixturePath := filepath.Join(paths.WorkingDir, "raw-events.json")
	if err := os.WriteFile(fixturePath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	fixture, err := calendar.NewFixture(fixturePath, testPattern)
	if err != nil {
		t.Fatal(err)
	}

	settings := testSettings()
	director := New(
		fixture,
		mapping.New(paths, settings),
		billing.New(paths, settings, prompter),
		nil,
		prompter,
	)
	director.Out = &bytes.Buffer{}
	return director, paths
}

func TestSyncBillsPastSession(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{answers: []string{"REF1"}}
	director, paths := newTestDirector(t, prompter)

	if err := director.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	invoices, err := model.LoadInvoicesDir(paths.GcalYmlsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(invoices))
	}
	inv := invoices[0]
	if !strings.HasSuffix(inv.InvoiceNumber, "-001") {
		t.Errorf("InvoiceNumber = %q", inv.InvoiceNumber)
	}
	if inv.Ref != "REF1" {
		t.Errorf("Ref = %q", inv.Ref)
	}
	if inv.GcalInfo == nil || inv.GcalInfo.EventID != "session-1" {
		t.Errorf("GcalInfo = %+v", inv.GcalInfo)
	}
	if len(inv.Items) != 1 || inv.Items[0].N != 4 {
		t.Errorf("Items = %+v", inv.Items)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{answers: []string{"REF1"}}
	director, paths := newTestDirector(t, prompter)

	if err := director.Sync(context.Background()); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	confirmsAfterFirst := prompter.confirms

	if err := director.Sync(context.Background()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if prompter.confirms != confirmsAfterFirst {
		t.Error("second run offered the already-billed session again")
	}

	invoices, err := model.LoadInvoicesDir(paths.GcalYmlsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 1 {
		t.Fatalf("got %d invoices after two runs, want 1", len(invoices))
	}
}

func TestReconcileDoesNotPrompt(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{}
	director, _ := newTestDirector(t, prompter)

	if err := director.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if prompter.confirms != 0 {
		t.Errorf("Reconcile asked %d questions, want 0", prompter.confirms)
	}
}

func TestReconcileRelinksRecreatedInvoice(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{answers: []string{"REF1"}}
	director, paths := newTestDirector(t, prompter)

	if err := director.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// Simulate an invoice that lost its link (hand edit).
	invoices, err := model.LoadInvoicesDir(paths.GcalYmlsDir)
	if err != nil {
		t.Fatal(err)
	}
	inv := invoices[0]
	inv.GcalInfo = nil
	if err := inv.Write(); err != nil {
		t.Fatal(err)
	}

	if err := director.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	invoices, err = model.LoadInvoicesDir(paths.GcalYmlsDir)
	if err != nil {
		t.Fatal(err)
	}
	if invoices[0].GcalInfo == nil || invoices[0].GcalInfo.EventID != "session-1" {
		t.Errorf("invoice was not re-linked: %+v", invoices[0].GcalInfo)
	}
}
