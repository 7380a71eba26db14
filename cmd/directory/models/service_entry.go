package models

import (
	"strings"
	"time"

	"github.com/dialwise/directory/common/apperr"
)

// Network identifies one of the four supported mobile networks.
// The set is closed; nothing else is a valid network id.
type Network string

const (
	NetworkMTN        Network = "mtn"
	NetworkTelecel    Network = "telecel"
	NetworkAirtelTigo Network = "airteltigo"
	NetworkGlo        Network = "glo"
)

// Networks returns the closed set of valid networks in canonical order
func Networks() []Network {
	return []Network{NetworkMTN, NetworkTelecel, NetworkAirtelTigo, NetworkGlo}
}

// ParseNetwork normalizes and validates a network identifier
func ParseNetwork(s string) (Network, error) {
	n := Network(NormalizeID(s))
	switch n {
	case NetworkMTN, NetworkTelecel, NetworkAirtelTigo, NetworkGlo:
		return n, nil
	}
	return "", apperr.InvalidArgument("unknown network: %s", s)
}

// NormalizeID canonicalizes service and network identifiers
// (trim whitespace, lowercase) before any lookup or write
func NormalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TelcoRecord is one network's entry for a service
type TelcoRecord struct {
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
}

// IsEmpty reports whether the record carries no information
func (r TelcoRecord) IsEmpty() bool {
	return r.Code == "" && r.Explanation == ""
}

// ServiceEntry is one row of the catalog: a service and its per-network
// dial codes. Telcos holds only the networks that have a record
// (possibly with empty strings); absent networks have no record at all.
type ServiceEntry struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Note      string                  `json:"note,omitempty"`
	Telcos    map[Network]TelcoRecord `json:"telcos"`
	Active    bool                    `json:"active"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Clone returns a deep copy. Repositories hand out clones so a caller
// holding a previously returned entry never observes a later mutation.
func (e *ServiceEntry) Clone() *ServiceEntry {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Telcos = make(map[Network]TelcoRecord, len(e.Telcos))
	for n, r := range e.Telcos {
		cp.Telcos[n] = r
	}
	return &cp
}

// Normalize canonicalizes the entry in place: id lowercased/trimmed,
// network keys validated against the closed set. Returns
// InvalidArgument for an unknown network key.
func (e *ServiceEntry) Normalize() error {
	e.ID = NormalizeID(e.ID)
	if e.Telcos == nil {
		e.Telcos = make(map[Network]TelcoRecord)
		return nil
	}

	telcos := make(map[Network]TelcoRecord, len(e.Telcos))
	for key, rec := range e.Telcos {
		n, err := ParseNetwork(string(key))
		if err != nil {
			return err
		}
		telcos[n] = rec
	}
	e.Telcos = telcos
	return nil
}

// FieldValue reads the addressed per-network leaf.
// A missing network record reads as the empty string.
func (e *ServiceEntry) FieldValue(p FieldPath) string {
	rec := e.Telcos[p.Network]
	if p.Leaf == LeafExplanation {
		return rec.Explanation
	}
	return rec.Code
}

// SetFieldValue writes the addressed per-network leaf, materializing
// the network record if it was absent
func (e *ServiceEntry) SetFieldValue(p FieldPath, value string) {
	if e.Telcos == nil {
		e.Telcos = make(map[Network]TelcoRecord)
	}
	rec := e.Telcos[p.Network]
	if p.Leaf == LeafExplanation {
		rec.Explanation = value
	} else {
		rec.Code = value
	}
	e.Telcos[p.Network] = rec
}
