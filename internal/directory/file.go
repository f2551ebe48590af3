package directory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource reads a YAML mapping of vendor name to e-mail address.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Contacts(_ context.Context) ([]Contact, error) {
	blob, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(blob)
}

func ParseYAML(blob []byte) ([]Contact, error) {
	var entries map[string]string
	if err := yaml.Unmarshal(blob, &entries); err != nil {
		return nil, fmt.Errorf("parse vendor directory: %w", err)
	}

	contacts := make([]Contact, 0, len(entries))
	for vendor, email := range entries {
		contacts = append(contacts, Contact{Vendor: vendor, Email: email})
	}
	sortContacts(contacts)
	return contacts, nil
}
