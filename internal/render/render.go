// Package render turns invoice records into PDF documents. The invoice
// is rendered to HTML through the operator's template, then printed by
// a headless Chromium instance.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"invoicez/internal/config"
	appLog "invoicez/internal/log"
	"invoicez/internal/model"
)

const defaultTimeout = 30 * time.Second

// templateName is the invoice template looked up under templates/.
const templateName = "invoice.html"

// A4 in inches, the paper size Chromium prints to.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// Renderer renders invoices to PDF.
type Renderer struct {
	paths    *config.Paths
	settings *config.Settings

	// Timeout bounds one print run. Zero picks a sane default.
	Timeout time.Duration
}

// New creates a Renderer over the repository paths.
func New(paths *config.Paths, settings *config.Settings) *Renderer {
	return &Renderer{paths: paths, settings: settings}
}

// templateContext is what the invoice template sees.
type templateContext struct {
	Invoice model.Invoice
	Company model.Company
	Total   int
}

// Render writes the invoice's HTML into the build directory, prints it
// with headless Chromium and returns the path of the resulting PDF.
func (r *Renderer) Render(ctx context.Context, invoice model.Invoice) (string, error) {
	name := strings.TrimSuffix(filepath.Base(invoice.Path), ".yml")
	if name == "" || name == "." {
		return "", fmt.Errorf("invoice has no usable path: %q", invoice.Path)
	}

	htmlPath, err := r.renderHTML(invoice, name)
	if err != nil {
		return "", err
	}

	pdfPath := filepath.Join(r.paths.PdfsDir, name+".pdf")
	if err := r.printToPDF(ctx, htmlPath, pdfPath); err != nil {
		return "", err
	}
	appLog.Info("invoice rendered", "invoice", invoice.InvoiceNumber, "pdf", pdfPath)
	return pdfPath, nil
}

func (r *Renderer) renderHTML(invoice model.Invoice, name string) (string, error) {
	tmpl, err := template.ParseFiles(filepath.Join(r.paths.TemplatesDir, templateName))
	if err != nil {
		return "", fmt.Errorf("could not load the invoice template: %w", err)
	}

	company, err := r.settings.GetCompany(invoice.Company)
	if err != nil {
		return "", err
	}

	total := 0
	for _, item := range invoice.Items {
		total += item.N * item.UnitPrice
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, templateContext{
		Invoice: invoice,
		Company: company,
		Total:   total,
	})
	if err != nil {
		return "", fmt.Errorf("could not render the invoice template: %w", err)
	}

	htmlPath := filepath.Join(r.paths.BuildDir, name+".html")
	if err := model.WriteFileAtomic(htmlPath, buf.Bytes()); err != nil {
		return "", err
	}
	return htmlPath, nil
}

func (r *Renderer) printToPDF(parentCtx context.Context, htmlPath, pdfPath string) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("file://" + htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				Do(ctx)
			return err
		}),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(r.paths.PdfsDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(pdfPath, pdf, 0o644)
}
