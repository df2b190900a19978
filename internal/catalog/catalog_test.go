package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlans(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 3)

	family, ok := FindPlan("family")
	require.True(t, ok)
	assert.Equal(t, 49.99, family.Price)
	assert.Equal(t, 18, family.MaxWeightKg)
	assert.Equal(t, 4, family.PickupsPerMonth)
	require.NotNil(t, family.Badge)
	assert.Equal(t, "Most Popular", *family.Badge)

	premium, ok := FindPlan("premium")
	require.True(t, ok)
	assert.True(t, premium.Unlimited())

	_, ok = FindPlan("platinum")
	assert.False(t, ok)
}

func TestPlansReturnsCopy(t *testing.T) {
	p := Plans()
	p[0].Price = 0
	starter, _ := FindPlan("starter")
	assert.Equal(t, 19.99, starter.Price)
}

func TestAddOns(t *testing.T) {
	require.Len(t, AddOns(), 6)
	stain, ok := FindAddOn("stain")
	require.True(t, ok)
	assert.Equal(t, 5.99, stain.Price)
	assert.Equal(t, "per item", stain.Unit)

	_, ok = FindAddOn("gold-plating")
	assert.False(t, ok)
}

func TestServesSuburb(t *testing.T) {
	assert.Len(t, Suburbs(), 50)

	name, ok := ServesSuburb("geelong west")
	require.True(t, ok)
	assert.Equal(t, "Geelong West", name)

	_, ok = ServesSuburb(" TORQUAY ")
	assert.True(t, ok)

	_, ok = ServesSuburb("Melbourne")
	assert.False(t, ok)

	_, ok = ServesSuburb("Geelong W")
	assert.False(t, ok)
}

func TestTimeSlotsAndStatuses(t *testing.T) {
	assert.Len(t, TimeSlots(), 5)
	statuses := TrackingStatuses()
	require.Len(t, statuses, 9)
	assert.Equal(t, "Order Placed", string(statuses[0]))
	assert.Equal(t, "Delivered", string(statuses[8]))
}
