// Package directory pulls vendor contact e-mails from an external vendor
// directory (HTTP API or YAML file) and applies them to a session's ledger.
package directory

import (
	"context"
	"sort"
	"strings"

	"ledgerchat/internal/ledger"
)

type Contact struct {
	Vendor    string
	Email     string
	UpdatedAt *string
}

type Source interface {
	Contacts(ctx context.Context) ([]Contact, error)
}

// Assignments turns contacts into bulk-update assignments. Later contacts
// for the same vendor (case-insensitive) replace earlier ones; contacts
// without a vendor or e-mail are dropped.
func Assignments(contacts []Contact) []ledger.Assignment {
	index := map[string]int{}
	out := make([]ledger.Assignment, 0, len(contacts))
	for _, c := range contacts {
		vendor := strings.TrimSpace(c.Vendor)
		email := strings.TrimSpace(c.Email)
		if vendor == "" || email == "" {
			continue
		}
		key := strings.ToLower(vendor)
		if i, ok := index[key]; ok {
			out[i].Value = email
			continue
		}
		index[key] = len(out)
		out = append(out, ledger.Assignment{Vendor: vendor, Value: email})
	}
	return out
}

func sortContacts(contacts []Contact) {
	sort.SliceStable(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Vendor) < strings.ToLower(contacts[j].Vendor)
	})
}
