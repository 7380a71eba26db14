package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialwise/directory/common/apperr"
)

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		input   string
		want    Network
		wantErr bool
	}{
		{"mtn", NetworkMTN, false},
		{"  MTN  ", NetworkMTN, false},
		{"Telecel", NetworkTelecel, false},
		{"airteltigo", NetworkAirtelTigo, false},
		{"glo", NetworkGlo, false},
		{"xx", "", true},
		{"", "", true},
		{"vodafone", "", true},
	}

	for _, tt := range tests {
		got, err := ParseNetwork(tt.input)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.input)
			assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFieldPath(t *testing.T) {
	p, err := ParseFieldPath("telcos.mtn.code")
	require.NoError(t, err)
	assert.Equal(t, NetworkMTN, p.Network)
	assert.Equal(t, LeafCode, p.Leaf)
	assert.Equal(t, "telcos.mtn.code", p.String())

	p, err = ParseFieldPath("telcos.glo.explanation")
	require.NoError(t, err)
	assert.Equal(t, NetworkGlo, p.Network)
	assert.Equal(t, LeafExplanation, p.Leaf)

	for _, bad := range []string{
		"",
		"telcos.mtn",
		"telcos.mtn.code.extra",
		"telcos.xx.code",
		"telcos.mtn.name",
		"entries.mtn.code",
	} {
		_, err := ParseFieldPath(bad)
		require.Error(t, err, "input %q", bad)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	}
}

func TestFieldPathTextRoundTrip(t *testing.T) {
	p := FieldPath{Network: NetworkTelecel, Leaf: LeafExplanation}

	text, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "telcos.telecel.explanation", string(text))

	var back FieldPath
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, p, back)
}

func TestServiceEntryFieldAccess(t *testing.T) {
	entry := &ServiceEntry{ID: "check_balance", Name: "Check Balance"}

	path := FieldPath{Network: NetworkMTN, Leaf: LeafCode}
	assert.Equal(t, "", entry.FieldValue(path))

	entry.SetFieldValue(path, "*124#")
	assert.Equal(t, "*124#", entry.FieldValue(path))
	assert.Equal(t, "*124#", entry.Telcos[NetworkMTN].Code)

	// Explanation leaf shares the record with the code leaf
	entry.SetFieldValue(FieldPath{Network: NetworkMTN, Leaf: LeafExplanation}, "balance enquiry")
	assert.Equal(t, "*124#", entry.Telcos[NetworkMTN].Code)
	assert.Equal(t, "balance enquiry", entry.Telcos[NetworkMTN].Explanation)
}

func TestServiceEntryCloneIsDeep(t *testing.T) {
	entry := &ServiceEntry{
		ID:     "check_balance",
		Telcos: map[Network]TelcoRecord{NetworkGlo: {Code: "*124#"}},
	}

	clone := entry.Clone()
	clone.SetFieldValue(FieldPath{Network: NetworkGlo, Leaf: LeafCode}, "*999#")

	assert.Equal(t, "*124#", entry.Telcos[NetworkGlo].Code)
	assert.Equal(t, "*999#", clone.Telcos[NetworkGlo].Code)
}

func TestServiceEntryNormalize(t *testing.T) {
	entry := &ServiceEntry{
		ID: "  Check_Balance ",
		Telcos: map[Network]TelcoRecord{
			"MTN ": {Code: "*124#"},
		},
	}

	require.NoError(t, entry.Normalize())
	assert.Equal(t, "check_balance", entry.ID)
	assert.Equal(t, "*124#", entry.Telcos[NetworkMTN].Code)

	bad := &ServiceEntry{
		ID:     "x",
		Telcos: map[Network]TelcoRecord{"vodafone": {}},
	}
	err := bad.Normalize()
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("Admin")
	require.NoError(t, err)
	assert.True(t, role.IsAdmin())
	_, ok := role.Network()
	assert.False(t, ok)

	role, err = ParseRole("telecel")
	require.NoError(t, err)
	assert.False(t, role.IsAdmin())
	network, ok := role.Network()
	require.True(t, ok)
	assert.Equal(t, NetworkTelecel, network)

	_, err = ParseRole("viewer")
	require.Error(t, err)
}

func TestChangeStatus(t *testing.T) {
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusDraft.Terminal())
	assert.False(t, StatusPending.Terminal())

	assert.True(t, StatusDraft.Live())
	assert.True(t, StatusPending.Live())
	assert.False(t, StatusApproved.Live())
}
