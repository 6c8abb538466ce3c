package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"invoicez/internal/model"
)

// Calendar backends.
const (
	BackendGoogle = "google"
	BackendICS    = "ics"
)

// CalendarSettings selects and configures the calendar source.
type CalendarSettings struct {
	// Backend is "google" (default) or "ics".
	Backend string `yaml:"backend"`
	// ICSURL is the subscription endpoint for the ics backend.
	ICSURL string `yaml:"ics_url,omitempty"`
}

// InvoiceStrings are text/template strings rendered with a Training and
// a Company in scope, e.g. "Day of “{{.Training.Name}}” training".
type InvoiceStrings struct {
	TrainingDay     string `yaml:"training_day"`
	HalfTrainingDay string `yaml:"half_training_day"`
	Description     string `yaml:"description"`
}

type Strings struct {
	Invoice InvoiceStrings `yaml:"invoice"`
}

// Settings is the operator-supplied configuration, loaded from
// config.yml at the repository root.
type Settings struct {
	// StartDate is the billing cutoff: merged events ending before it
	// are never offered for billing. Zero means no cutoff.
	StartDate model.Date `yaml:"start_date,omitempty"`

	// TitlePattern parses event summaries; it must declare the
	// continuation, company, training and extra named groups.
	TitlePattern string `yaml:"title_pattern"`

	// InvoiceNameFormat names new invoice files. Template fields:
	// InvoiceNumber, Company, Training, Ref. The ".yml" suffix is
	// appended by the biller.
	InvoiceNameFormat string `yaml:"invoice_name_format_string"`

	// SyncCron is the schedule used by `sync --watch`.
	SyncCron string `yaml:"sync_cron,omitempty"`

	Calendar  CalendarSettings          `yaml:"calendar"`
	Companies map[string]model.Company  `yaml:"companies"`
	Trainings map[string]model.Training `yaml:"trainings"`
	Rates     map[string]model.Rate     `yaml:"rates"`
	Strings   Strings                   `yaml:"strings"`
}

// Load reads and validates settings from paths.Config.
func Load(paths *Paths) (*Settings, error) {
	if paths == nil {
		return nil, errors.New("paths is nil")
	}
	data, err := os.ReadFile(paths.Config)
	if err != nil {
		return nil, model.NewConfigError("could not read %s: %v", paths.Config, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, model.NewConfigError("could not parse %s: %v", paths.Config, err)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Normalize fills missing values with defaults so partially-filled
// configs still behave.
func (s *Settings) Normalize() {
	switch s.Calendar.Backend {
	case BackendGoogle, BackendICS:
	default:
		s.Calendar.Backend = BackendGoogle
	}
	if s.SyncCron == "" {
		s.SyncCron = "*/15 * * * *"
	}
	if s.Companies == nil {
		s.Companies = map[string]model.Company{}
	}
	if s.Trainings == nil {
		s.Trainings = map[string]model.Training{}
	}
	if s.Rates == nil {
		s.Rates = map[string]model.Rate{}
	}
}

// Validate checks the settings the pipeline cannot run without.
func (s *Settings) Validate() error {
	if s.TitlePattern == "" {
		return model.NewConfigError("title_pattern is required")
	}
	if _, err := model.CompilePattern(s.TitlePattern); err != nil {
		return err
	}
	if s.InvoiceNameFormat == "" {
		return model.NewConfigError("invoice_name_format_string is required")
	}
	if s.Calendar.Backend == BackendICS && s.Calendar.ICSURL == "" {
		return model.NewConfigError("calendar.ics_url is required for the ics backend")
	}
	return nil
}

// GetTraining looks a training up by its key, failing with a ConfigError
// naming the missing entry.
func (s *Settings) GetTraining(name string) (model.Training, error) {
	training, ok := s.Trainings[name]
	if !ok {
		return model.Training{}, model.NewConfigError("couldn't find %q in settings > trainings", name)
	}
	return training, nil
}

// GetCompany looks a company up by its key.
func (s *Settings) GetCompany(name string) (model.Company, error) {
	company, ok := s.Companies[name]
	if !ok {
		return model.Company{}, model.NewConfigError("couldn't find %q in settings > companies", name)
	}
	return company, nil
}

// GetRate looks a rate table up by its key.
func (s *Settings) GetRate(name string) (model.Rate, error) {
	rate, ok := s.Rates[name]
	if !ok {
		return model.Rate{}, model.NewConfigError("couldn't find %q in settings > rates", name)
	}
	return rate, nil
}
