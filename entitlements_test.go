package openaccess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Entitlements_Union(t *testing.T) {
	tests := []struct {
		name  string
		e     Entitlements
		other Entitlements
		want  Entitlements
	}{
		{
			"union of two empty sets is empty, not nil",
			nil,
			nil,
			Entitlements{},
		},
		{
			"new tiers are appended",
			Entitlements{TierBonus},
			Entitlements{TierPremium},
			Entitlements{TierBonus, TierPremium},
		},
		{
			"tiers already present are not duplicated",
			Entitlements{TierBonus, TierPremium},
			Entitlements{TierPremium, TierBonus},
			Entitlements{TierBonus, TierPremium},
		},
		{
			"duplicates in either input are collapsed",
			Entitlements{TierBonus, TierBonus},
			Entitlements{"x", "x"},
			Entitlements{TierBonus, "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.Union(tt.other)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Entitlements_Without(t *testing.T) {
	tests := []struct {
		name  string
		e     Entitlements
		other Entitlements
		want  Entitlements
	}{
		{
			"removing from an empty set yields an empty set",
			nil,
			Entitlements{TierBonus},
			Entitlements{},
		},
		{
			"requested tiers are removed",
			Entitlements{TierBonus, TierPremium},
			Entitlements{TierBonus},
			Entitlements{TierPremium},
		},
		{
			"tiers not present are ignored",
			Entitlements{TierPremium},
			Entitlements{"x"},
			Entitlements{TierPremium},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.Without(tt.other)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Entitlements_AddThenDeleteRestoresOriginal(t *testing.T) {
	originals := []Entitlements{
		{},
		{TierBonus},
		{TierBonus, "some-other-tier"},
	}
	delta := Entitlements{TierPremium, "another-tier"}
	for _, original := range originals {
		got := original.Union(delta).Without(delta)
		assert.True(t, got.Equal(original), "expected %v, got %v", original, got)
	}
}

func Test_Entitlements_Equal(t *testing.T) {
	assert.True(t, Entitlements{}.Equal(nil))
	assert.True(t, Entitlements{TierBonus, TierPremium}.Equal(Entitlements{TierPremium, TierBonus}))
	assert.False(t, Entitlements{TierBonus}.Equal(Entitlements{TierBonus, TierPremium}))
	assert.False(t, Entitlements{TierBonus, TierPremium}.Equal(Entitlements{TierBonus}))
}

func Test_IsValidUserId(t *testing.T) {
	assert.True(t, IsValidUserId("aaaaaaaaaaaaaaaaaaaaaaaaaaa1"))
	assert.False(t, IsValidUserId(""))
	assert.False(t, IsValidUserId("invalid_user_id"))
	assert.False(t, IsValidUserId("aaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	assert.False(t, IsValidUserId("aaaaaaaaaaaaaaaaaaaaaaaaaa_1"))
}

func Test_PartnerUserId(t *testing.T) {
	got, err := PartnerUserId("aaaaaaaaaaaaaaaaaaaaaaaaaaa1")
	assert.NoError(t, err)
	assert.Equal(t, "69a69a69a69a69a69a69a69a69a69a69a69a69a6b5", got)

	got, err = PartnerUserId("AAAAAAAAAAAAAAAAAAAAAAAAAAAB")
	assert.NoError(t, err)
	assert.Equal(t, "000000000000000000000000000000000000000001", got)

	_, err = PartnerUserId("not base64!")
	assert.Error(t, err)

	_, err = PartnerUserId("")
	assert.Error(t, err)
}
