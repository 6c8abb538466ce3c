package model

// Settings data records. These are loaded from config.yml; unknown keys
// are tolerated so operators can hang extra data (bank details, template
// variables) off them for the document templates.

// Rate is a price table, in whole currency units per day.
type Rate struct {
	TrainingDay    int `yaml:"training_day"`
	PreparationDay int `yaml:"preparation_day"`
}

// Company is a billable client.
type Company struct {
	Name        string `yaml:"name"`
	Siren       string `yaml:"siren,omitempty"`
	Address     string `yaml:"address,omitempty"`
	MaximumDays int    `yaml:"maximum_days,omitempty"`
}

// Training is a course sold to one company, pointing at a rate entry.
type Training struct {
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name,omitempty"`
	Reference string `yaml:"reference,omitempty"`
	Rate      string `yaml:"rate"`
	Company   string `yaml:"company"`
}
