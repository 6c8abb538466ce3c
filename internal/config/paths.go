package config

import "path/filepath"

// Paths resolves every file location the tool touches, rooted at the
// invoice repository's working directory.
//
// Visible layout:
//
//	gcal-ymls/   invoices derived from calendar events
//	extra-ymls/  manually entered invoices (read-only to the reconciler)
//	pdfs/        rendered invoice documents
//	templates/   document templates
//	config.yml   settings
//
// Hidden state lives under .invoicez/ (build artifacts, Google OAuth
// secrets and token, the selected calendar id, the ICS fetch cache).
type Paths struct {
	WorkingDir string

	GcalYmlsDir  string
	ExtraYmlsDir string
	PdfsDir      string
	TemplatesDir string
	Config       string

	InvoicezDir      string
	BuildDir         string
	GoogleSecrets    string
	GoogleToken      string
	SelectedCalendar string
	ICSCacheDir      string
}

// NewPaths builds the path set for workingDir.
func NewPaths(workingDir string) (*Paths, error) {
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, err
	}

	hidden := filepath.Join(abs, ".invoicez")
	return &Paths{
		WorkingDir: abs,

		GcalYmlsDir:  filepath.Join(abs, "gcal-ymls"),
		ExtraYmlsDir: filepath.Join(abs, "extra-ymls"),
		PdfsDir:      filepath.Join(abs, "pdfs"),
		TemplatesDir: filepath.Join(abs, "templates"),
		Config:       filepath.Join(abs, "config.yml"),

		InvoicezDir:      hidden,
		BuildDir:         filepath.Join(hidden, "build"),
		GoogleSecrets:    filepath.Join(hidden, "gcalendar-secrets.json"),
		GoogleToken:      filepath.Join(hidden, "gcalendar-token.json"),
		SelectedCalendar: filepath.Join(hidden, "selected-calendar.txt"),
		ICSCacheDir:      filepath.Join(hidden, "ics-cache"),
	}, nil
}
