package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, want := range StatusOrder {
		got, err := ParseStatus(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := ParseStatus("  interview ")
	require.NoError(t, err)
	assert.Equal(t, StatusInterview, got)

	_, err = ParseStatus("ghosted")
	assert.Error(t, err)

	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusOffer.Valid())
	assert.False(t, Status("Offerr").Valid())
	assert.False(t, Status("").Valid())
}

func TestValidateNew(t *testing.T) {
	ok := Application{
		Company:     "Acme",
		Role:        "Platform Engineer",
		DateApplied: "2025-03-14",
		Status:      StatusApplied,
	}
	assert.NoError(t, ok.ValidateNew())

	cases := map[string]Application{
		"empty company": {Role: "Eng", DateApplied: "2025-03-14", Status: StatusApplied},
		"blank role":    {Company: "Acme", Role: "   ", DateApplied: "2025-03-14", Status: StatusApplied},
		"missing date":  {Company: "Acme", Role: "Eng", Status: StatusApplied},
		"bad date":      {Company: "Acme", Role: "Eng", DateApplied: "14/03/2025", Status: StatusApplied},
		"bad status":    {Company: "Acme", Role: "Eng", DateApplied: "2025-03-14", Status: "Pending"},
	}
	for name, a := range cases {
		assert.Error(t, a.ValidateNew(), name)
	}
}
