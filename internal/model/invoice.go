package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// GcalInfo links an invoice back to the calendar event it bills. Its
// presence is the billed/unbilled signal the reconciler consults.
type GcalInfo struct {
	Link    string `yaml:"link"`
	EventID string `yaml:"event_id"`
}

// DateList accepts either a single "2006-01-02" scalar or a sequence of
// them; a scalar decodes to a one-element list.
type DateList []Date

func (l *DateList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var dates []Date
		if err := value.Decode(&dates); err != nil {
			return err
		}
		*l = dates
		return nil
	}
	var d Date
	if err := value.Decode(&d); err != nil {
		return err
	}
	*l = DateList{d}
	return nil
}

// NumberList accepts a scalar or a sequence of numbers.
type NumberList []float64

func (l *NumberList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var ns []float64
		if err := value.Decode(&ns); err != nil {
			return err
		}
		*l = ns
		return nil
	}
	var n float64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*l = NumberList{n}
	return nil
}

// ItemDate carries the dated entries of a line item. In YAML it may be a
// bare date scalar, shorthand for {start: <date>}.
type ItemDate struct {
	Start        DateList     `yaml:"start"`
	Duration     NumberList   `yaml:"duration,omitempty"`
	DurationUnit DurationUnit `yaml:"duration_unit,omitempty"`
}

func (d *ItemDate) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var single Date
		if err := value.Decode(&single); err != nil {
			return err
		}
		*d = ItemDate{Start: DateList{single}}
		return nil
	}
	type plain ItemDate
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = ItemDate(p)
	return nil
}

// Earliest returns the minimum start date, or false when there is none.
func (d *ItemDate) Earliest() (Date, bool) {
	if d == nil || len(d.Start) == 0 {
		return Date{}, false
	}
	earliest := d.Start[0]
	for _, s := range d.Start[1:] {
		if s.Before(earliest.Time) {
			earliest = s
		}
	}
	return earliest, true
}

// Item is one billable line.
type Item struct {
	Date        *ItemDate `yaml:"date,omitempty"`
	Description string    `yaml:"description"`
	N           int       `yaml:"n"`
	UnitPrice   int       `yaml:"unit_price"`
}

// Invoice is one persisted invoice record, one YAML document per file.
// Path is where the record lives on disk; it is never serialized.
type Invoice struct {
	Path          string    `yaml:"-"`
	InvoiceNumber string    `yaml:"invoice_number"`
	Description   string    `yaml:"description,omitempty"`
	Company       string    `yaml:"company"`
	Ref           string    `yaml:"ref,omitempty"`
	Date          Date      `yaml:"date"`
	GcalInfo      *GcalInfo `yaml:"gcal_info,omitempty"`
	Items         []Item    `yaml:"items"`
}

// FirstItemStart returns the earliest start date of the first item,
// which is the reconciliation key used to link invoices to merged
// events.
func (inv *Invoice) FirstItemStart() (Date, bool) {
	if len(inv.Items) == 0 {
		return Date{}, false
	}
	return inv.Items[0].Date.Earliest()
}

// LoadInvoicesDir reads every *.yml file under dir, in path-sorted order
// for determinism. A missing directory yields an empty list.
func LoadInvoicesDir(dir string) ([]Invoice, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	invoices := make([]Invoice, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var inv Invoice
		if err := yaml.Unmarshal(data, &inv); err != nil {
			return nil, fmt.Errorf("could not parse invoice %s: %w", path, err)
		}
		inv.Path = path
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// YAML serializes the invoice document (Path excluded).
func (inv *Invoice) YAML() ([]byte, error) {
	return yaml.Marshal(inv)
}

// Write persists the invoice at inv.Path.
//
// The document is written to a temp file in the target directory, synced
// and renamed over the destination, so a crash mid-write cannot leave a
// corrupt record behind.
func (inv *Invoice) Write() error {
	if inv.Path == "" {
		return fmt.Errorf("invoice %s has no path", inv.InvoiceNumber)
	}
	data, err := inv.YAML()
	if err != nil {
		return err
	}
	return WriteFileAtomic(inv.Path, data)
}

// WriteFileAtomic replaces path with data via temp file + fsync + rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".invoicez-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
