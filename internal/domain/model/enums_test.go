package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsDelivered(t *testing.T) {
	for _, s := range DeliveredStatuses() {
		assert.True(t, s.IsDelivered(), s)
		assert.True(t, s.IsValid(), s)
	}
	assert.Len(t, DeliveredStatuses(), 4)

	for _, s := range []Status{StatusNew, StatusPlanned, StatusInProgress, StatusCancelled} {
		assert.False(t, s.IsDelivered(), s)
	}
}

func TestStatus_Label(t *testing.T) {
	assert.Equal(t, "Delivered", StatusDelivered.Label())
	assert.Equal(t, "bogus", Status("bogus").Label())
	assert.False(t, Status("bogus").IsValid())
}

func TestCategoryCode_IsKnown(t *testing.T) {
	assert.True(t, CategoryBatch.IsKnown())
	assert.False(t, CategoryCode("").IsKnown())
	assert.False(t, CategoryCode("batch").IsKnown())
}

func TestAllStatuses(t *testing.T) {
	all := AllStatuses()
	assert.Len(t, all, len(statusLabels))
	for _, s := range all {
		assert.True(t, s.IsValid(), s)
	}
	assert.Subset(t, all, DeliveredStatuses())
}
