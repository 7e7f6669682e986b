package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func delivered(mantis string, desired, actual time.Time) model.Installation {
	return model.Installation{Mantis: mantis, Status: model.StatusDelivered, DesiredDate: desired, DeliveryDate: actual}
}

func TestComputeDelayStats_OKAndKO(t *testing.T) {
	buckets := ComputeDelayStats([]model.Installation{
		delivered("ok-1", day(2025, 3, 15), day(2025, 3, 10)),
		delivered("ko-1", day(2025, 3, 15), day(2025, 3, 20)),
	}, "en_US")

	require.Len(t, buckets, 1)
	assert.Equal(t, "2025-03", buckets[0].Month)
	assert.Equal(t, 1, buckets[0].OK)
	assert.Equal(t, 1, buckets[0].KO)
	assert.Equal(t, []string{"ko-1"}, buckets[0].KOMantis)
	assert.Equal(t, "March 2025", buckets[0].Label)
}

func TestComputeDelayStats_SameDayIsOK(t *testing.T) {
	// Time of day is ignored: delivered late in the evening of the desired day.
	buckets := ComputeDelayStats([]model.Installation{
		delivered("m", day(2025, 3, 15), time.Date(2025, 3, 15, 23, 30, 0, 0, time.UTC)),
	}, "en_US")

	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].OK)
	assert.Zero(t, buckets[0].KO)
	assert.Empty(t, buckets[0].KOMantis)
	assert.NotNil(t, buckets[0].KOMantis, "empty KO list encodes as []")
}

func TestComputeDelayStats_ExcludesMissingDates(t *testing.T) {
	buckets := ComputeDelayStats([]model.Installation{
		delivered("no-desired", time.Time{}, day(2025, 3, 10)),
		delivered("no-actual", day(2025, 3, 15), time.Time{}),
		delivered("neither", time.Time{}, time.Time{}),
	}, "en_US")

	assert.Empty(t, buckets)
}

func TestComputeDelayStats_OrderedByMonth(t *testing.T) {
	buckets := ComputeDelayStats([]model.Installation{
		delivered("c", day(2025, 5, 1), day(2025, 5, 2)),
		delivered("a", day(2024, 12, 1), day(2024, 12, 1)),
		delivered("b", day(2025, 1, 31), day(2025, 1, 3)),
		delivered("d", day(2025, 5, 1), day(2025, 5, 9)),
	}, "fr_FR")

	require.Len(t, buckets, 3)
	assert.Equal(t, "2024-12", buckets[0].Month)
	assert.Equal(t, "2025-01", buckets[1].Month)
	assert.Equal(t, "2025-05", buckets[2].Month)
	assert.Equal(t, 2, buckets[2].KO)
	assert.Equal(t, []string{"c", "d"}, buckets[2].KOMantis)
	assert.Equal(t, "mai 2025", buckets[2].Label)
}
