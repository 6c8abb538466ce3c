// Package mapping reconciles merged calendar events against the on-disk
// invoice store: it prunes stale calendar links, links unlinked invoices
// to events by start date, and filters out the unbilled past events that
// are candidates for billing.
package mapping

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"invoicez/internal/config"
	appLog "invoicez/internal/log"
	"invoicez/internal/model"
)

// Mapper runs read+conditional-write passes over the invoice store.
// Manually-entered invoices (extra-ymls) are never touched; only the
// calendar-derived partition (gcal-ymls) is read and rewritten.
type Mapper struct {
	paths    *config.Paths
	settings *config.Settings
}

func New(paths *config.Paths, settings *config.Settings) *Mapper {
	return &Mapper{paths: paths, settings: settings}
}

// Match pairs an invoice with the merged event it was linked to.
type Match struct {
	Invoice model.Invoice
	Event   model.MergedEvent
}

func (m *Mapper) gcalInvoices() ([]model.Invoice, error) {
	return model.LoadInvoicesDir(m.paths.GcalYmlsDir)
}

func (m *Mapper) linkedGcalInvoices() ([]model.Invoice, error) {
	invoices, err := m.gcalInvoices()
	if err != nil {
		return nil, err
	}
	linked := invoices[:0:0]
	for _, inv := range invoices {
		if inv.GcalInfo != nil {
			linked = append(linked, inv)
		}
	}
	return linked, nil
}

func (m *Mapper) unlinkedGcalInvoices() ([]model.Invoice, error) {
	invoices, err := m.gcalInvoices()
	if err != nil {
		return nil, err
	}
	unlinked := invoices[:0:0]
	for _, inv := range invoices {
		if inv.GcalInfo == nil {
			unlinked = append(unlinked, inv)
		}
	}
	return unlinked, nil
}

// PruneStaleLinks drops the gcal_info field from every linked invoice
// whose event id is not among the current merged events, rewriting each
// affected file atomically. It returns the invoices it modified; running
// it again without calendar changes writes nothing.
func (m *Mapper) PruneStaleLinks(merged []model.MergedEvent) ([]model.Invoice, error) {
	ids := make(map[string]bool, len(merged))
	for _, event := range merged {
		ids[event.ID] = true
	}

	linked, err := m.linkedGcalInvoices()
	if err != nil {
		return nil, err
	}

	var pruned []model.Invoice
	for _, inv := range linked {
		if ids[inv.GcalInfo.EventID] {
			continue
		}
		doc, err := readDoc(inv.Path)
		if err != nil {
			return pruned, err
		}
		if !deleteDocKey(doc, "gcal_info") {
			continue
		}
		if err := writeDoc(inv.Path, doc); err != nil {
			return pruned, err
		}
		appLog.Info("pruned stale calendar link",
			"invoice", inv.InvoiceNumber, "event_id", inv.GcalInfo.EventID)
		pruned = append(pruned, inv)
	}
	return pruned, nil
}

// LinkByStartDate links unlinked calendar-derived invoices to merged
// events whose earliest start date equals the invoice's first item start
// date. Exact date equality is the reconciliation key and is treated as
// unique in well-formed data; on collision the last event wins. Matched
// invoices get their gcal_info written; the second return value is the
// merged events no invoice consumed.
func (m *Mapper) LinkByStartDate(merged []model.MergedEvent) ([]Match, []model.MergedEvent, error) {
	eventsByStart := make(map[string]model.MergedEvent, len(merged))
	for _, event := range merged {
		eventsByStart[model.DateOf(event.EarliestStart()).String()] = event
	}

	unlinked, err := m.unlinkedGcalInvoices()
	if err != nil {
		return nil, nil, err
	}

	var matches []Match
	matchedIDs := make(map[string]bool)
	for _, inv := range unlinked {
		first, ok := inv.FirstItemStart()
		if !ok {
			continue
		}
		event, ok := eventsByStart[first.String()]
		if !ok {
			continue
		}
		doc, err := readDoc(inv.Path)
		if err != nil {
			return matches, nil, err
		}
		setDocKey(doc, "gcal_info", gcalInfoNode(event))
		if err := writeDoc(inv.Path, doc); err != nil {
			return matches, nil, err
		}
		appLog.Info("linked invoice to calendar event",
			"invoice", inv.InvoiceNumber, "event_id", event.ID)
		matches = append(matches, Match{Invoice: inv, Event: event})
		matchedIDs[event.ID] = true
	}

	unmatched := make([]model.MergedEvent, 0, len(merged))
	for _, event := range merged {
		if !matchedIDs[event.ID] {
			unmatched = append(unmatched, event)
		}
	}
	return matches, unmatched, nil
}

// FilterUnbilled keeps the merged events that are not linked by any
// invoice (the linked set is re-read, so links written by a preceding
// pass count) and whose latest end date falls inside
// [settings start_date, today]. These are the billing candidates.
func (m *Mapper) FilterUnbilled(merged []model.MergedEvent, today model.Date) ([]model.MergedEvent, error) {
	linked, err := m.linkedGcalInvoices()
	if err != nil {
		return nil, err
	}
	linkedIDs := make(map[string]bool, len(linked))
	for _, inv := range linked {
		linkedIDs[inv.GcalInfo.EventID] = true
	}

	var unbilled []model.MergedEvent
	for _, event := range merged {
		if linkedIDs[event.ID] {
			continue
		}
		end := model.DateOf(event.LatestEnd())
		if end.After(today.Time) {
			continue
		}
		if end.Before(m.settings.StartDate.Time) {
			continue
		}
		unbilled = append(unbilled, event)
	}
	return unbilled, nil
}

// Today returns the current date, the reference point for FilterUnbilled.
func Today() model.Date {
	return model.DateOf(time.Now())
}

// readDoc loads a whole invoice file as a YAML node tree. Working on
// nodes rather than map[string]any keeps unknown keys, key order and
// the exact scalar text (unquoted dates in particular) intact across a
// rewrite.
func readDoc(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// writeDoc atomically replaces the invoice file with the transformed
// document. The record is replaced wholesale, never patched in place.
func writeDoc(path string, doc *yaml.Node) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return model.WriteFileAtomic(path, data)
}

// docMapping unwraps the document node down to its top-level mapping,
// or nil if the file does not hold one.
func docMapping(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	return doc
}

// deleteDocKey removes key from the document's top-level mapping and
// reports whether it was present.
func deleteDocKey(doc *yaml.Node, key string) bool {
	m := docMapping(doc)
	if m == nil {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}

// setDocKey replaces the value of key in the document's top-level
// mapping, appending the pair when the key is absent.
func setDocKey(doc *yaml.Node, key string, value *yaml.Node) {
	m := docMapping(doc)
	if m == nil {
		return
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, strNode(key), value)
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func gcalInfoNode(event model.MergedEvent) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			strNode("event_id"), strNode(event.ID),
			strNode("link"), strNode(event.Link),
		},
	}
}
