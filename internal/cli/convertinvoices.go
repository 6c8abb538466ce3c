package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appLog "invoicez/internal/log"
	"invoicez/internal/model"
)

var convertInvoicesCmd = &cobra.Command{
	Use:   "convert-invoices",
	Short: "Migrate invoice files from the legacy key names",
	Long: `Rewrites every invoice record still using the legacy key names:
"products" becomes "items" and, inside each item, "pu" becomes
"unit_price". Unknown keys are preserved; files already using the
current names are left untouched.`,
	RunE: runConvertInvoices,
}

func runConvertInvoices(cmd *cobra.Command, args []string) error {
	paths, _, err := loadEnvironment()
	if err != nil {
		return err
	}
	for _, dir := range []string{paths.GcalYmlsDir, paths.ExtraYmlsDir} {
		if err := convertInvoicesDir(dir); err != nil {
			return err
		}
	}
	return nil
}

func convertInvoicesDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}
	for _, path := range files {
		converted, err := convertInvoiceFile(path)
		if err != nil {
			return err
		}
		if converted {
			appLog.Info("converted legacy invoice", "path", path)
		}
	}
	return nil
}

// convertInvoiceFile renames the legacy keys on the YAML node tree, so
// everything it does not touch (unknown keys, key order, the exact text
// of date scalars) comes back out of the rewrite unchanged.
func convertInvoiceFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return false, nil
	}

	converted := renameMapKey(root, "products", "items")
	if items := mapValue(root, "items"); items != nil && items.Kind == yaml.SequenceNode {
		for _, item := range items.Content {
			if item.Kind != yaml.MappingNode {
				continue
			}
			if renameMapKey(item, "pu", "unit_price") {
				converted = true
			}
		}
	}
	if !converted {
		return false, nil
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return false, err
	}
	return true, model.WriteFileAtomic(path, out)
}

// renameMapKey renames a key of the mapping node in place and reports
// whether it was present.
func renameMapKey(m *yaml.Node, from, to string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == from {
			m.Content[i].Value = to
			return true
		}
	}
	return false
}

func mapValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
