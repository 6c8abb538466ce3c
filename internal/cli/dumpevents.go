package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"invoicez/internal/calendar"
	appLog "invoicez/internal/log"
	"invoicez/internal/model"
	"invoicez/internal/prompt"
)

var (
	anonymize  bool
	replayPath string
)

var dumpEventsCmd = &cobra.Command{
	Use:   "dump-events <output>",
	Short: "Dump the raw calendar events to a JSON file",
	Long: `Dumps every raw event of the selected calendar to a JSON file that the
fixture backend can replay.

With --anonymize, company, training, extra, id, link and ref values are
replaced with stable placeholders so the dump can be shared or committed
as a test fixture. Events whose title does not match the pattern are
dropped from an anonymized dump.

With --replay, events are read from a previous dump instead of the live
calendar, e.g. to anonymize a dump after the fact.`,
	Args: cobra.ExactArgs(1),
	RunE: runDumpEvents,
}

func init() {
	dumpEventsCmd.Flags().BoolVar(&anonymize, "anonymize", false, "Replace identifying values with placeholders")
	dumpEventsCmd.Flags().StringVar(&replayPath, "replay", "", "Read events from a previous dump instead of the calendar")
}

func runDumpEvents(cmd *cobra.Command, args []string) error {
	paths, settings, err := loadEnvironment()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var session calendar.Calendar
	if replayPath != "" {
		session, err = calendar.NewFixture(replayPath, settings.TitlePattern)
	} else {
		prompter := prompt.NewTerminal(os.Stdin, os.Stdout)
		session, err = calendar.New(ctx, paths, settings, prompter)
	}
	if err != nil {
		return err
	}
	raws, err := session.ListRawEvents(ctx)
	if err != nil {
		return err
	}

	if anonymize {
		pattern, err := model.CompilePattern(settings.TitlePattern)
		if err != nil {
			return err
		}
		raws = anonymizeRawEvents(raws, pattern)
	}

	data, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return err
	}
	if err := model.WriteFileAtomic(args[0], data); err != nil {
		return err
	}
	appLog.Info("dumped raw events", "output", args[0], "count", len(raws))
	return nil
}

// anonymizeRawEvents rewrites identifying values with placeholders that
// stay stable within one dump, so merge relationships (same company,
// same training) survive anonymization.
func anonymizeRawEvents(raws []model.RawEvent, pattern *regexp.Regexp) []model.RawEvent {
	companies := map[string]string{}
	trainings := map[string]map[string]string{}
	extras := map[string]string{}
	ids := map[string]string{}
	links := map[string]string{}
	refs := map[string]string{}

	out := make([]model.RawEvent, 0, len(raws))
	for _, raw := range raws {
		title := model.ParseTitle(raw.Summary, pattern)
		if title == nil {
			continue
		}

		continuation := ""
		if title.Continuation {
			continuation = "-> "
		}
		company := placeholder(companies, title.Company, "Company")
		if trainings[title.Company] == nil {
			trainings[title.Company] = map[string]string{}
		}
		training := placeholder(trainings[title.Company], title.Training, "Training")
		extra := ""
		if title.Extra != "" {
			extra = " - " + placeholder(extras, title.Extra, "Extra")
		}

		anon := model.RawEvent{
			ID:       placeholder(ids, raw.ID, "Id"),
			Summary:  fmt.Sprintf("%s%s - %s - %s%s", continuation, company, training, title.Place, extra),
			HTMLLink: placeholder(links, raw.HTMLLink, "HTMLLink"),
			Start:    raw.Start,
			End:      raw.End,
		}
		if raw.Description != "" {
			anon.Description = anonymizeDescription(raw.Description, refs)
		}
		out = append(out, anon)
	}
	return out
}

// anonymizeDescription replaces the ref value inside a YAML description
// and keeps everything else as parsed.
func anonymizeDescription(description string, refs map[string]string) string {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(description), &doc); err != nil || doc == nil {
		return ""
	}
	if ref, ok := doc["ref"].(string); ok {
		doc["ref"] = placeholder(refs, ref, "Ref")
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return ""
	}
	return string(data)
}

// placeholder returns the stable placeholder for value, minting
// "<prefix>_<n>" on first sight.
func placeholder(known map[string]string, value, prefix string) string {
	if p, ok := known[value]; ok {
		return p
	}
	p := fmt.Sprintf("%s_%d", prefix, len(known))
	known[value] = p
	return p
}
