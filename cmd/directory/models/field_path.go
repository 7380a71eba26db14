package models

import (
	"fmt"
	"strings"

	"github.com/dialwise/directory/common/apperr"
)

// FieldLeaf names the leaf within one network's record
type FieldLeaf string

const (
	LeafCode        FieldLeaf = "code"
	LeafExplanation FieldLeaf = "explanation"
)

// FieldPath addresses exactly one of the 8 per-network leaves of a
// service entry, e.g. "telcos.mtn.code"
type FieldPath struct {
	Network Network
	Leaf    FieldLeaf
}

// ParseFieldPath parses and validates a "telcos.<network>.<leaf>" path
func ParseFieldPath(s string) (FieldPath, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 || parts[0] != "telcos" {
		return FieldPath{}, apperr.InvalidArgument("invalid field path: %s", s)
	}

	network, err := ParseNetwork(parts[1])
	if err != nil {
		return FieldPath{}, apperr.InvalidArgument("invalid field path %s: unknown network %s", s, parts[1])
	}

	switch FieldLeaf(parts[2]) {
	case LeafCode, LeafExplanation:
		return FieldPath{Network: network, Leaf: FieldLeaf(parts[2])}, nil
	}
	return FieldPath{}, apperr.InvalidArgument("invalid field path %s: unknown leaf %s", s, parts[2])
}

// String returns the canonical dotted form
func (p FieldPath) String() string {
	return fmt.Sprintf("telcos.%s.%s", p.Network, p.Leaf)
}

// MarshalText serializes the path as its dotted form
func (p FieldPath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the dotted form
func (p *FieldPath) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldPath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
