package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pawprintslab/pawtrail/internal/common"
	"github.com/pawprintslab/pawtrail/internal/entity"
)

// ListDocuments reads every *.txt file directly under root, in lexicographic
// filename order, so repeated batch runs see the same document sequence.
// Hidden files are skipped. A missing root is a prerequisite failure for the
// whole batch, not a per-document problem.
func ListDocuments(root string) ([]entity.Document, error) {
	if strings.TrimSpace(root) == "" {
		return nil, common.MissingPrerequisite("invoices directory")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read invoices dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != ".txt" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]entity.Document, 0, len(names))
	for _, name := range names {
		text, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", name, err)
		}
		docs = append(docs, entity.Document{ID: name, Text: string(text)})
	}
	return docs, nil
}
