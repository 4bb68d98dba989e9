package service

import (
	"os"
	"path/filepath"
)

// FileInvoiceStore resolves invoice references against a directory of
// artifacts produced by the billing pipeline. The scheduling core only
// checks presence and forwards the reference.
type FileInvoiceStore struct {
	Root string
}

func NewFileInvoiceStore(root string) *FileInvoiceStore {
	return &FileInvoiceStore{Root: root}
}

func (s *FileInvoiceStore) Exists(reference string) bool {
	if reference == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(s.Root, filepath.Base(reference)))
	return err == nil && !info.IsDir()
}
