package application

import (
	"sort"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// ComputeDelayStats buckets delivered installations by the month of their
// actual delivery. A delivery on or before its desired date counts as OK,
// comparing calendar dates only; a later one counts as KO and its Mantis id
// joins the bucket's KO list. Installations missing either date are skipped.
// Buckets are ordered by month ascending and labeled in the given locale.
func ComputeDelayStats(installs []model.Installation, locale string) []model.DelayBucket {
	byMonth := make(map[string]*model.DelayBucket)

	for _, inst := range installs {
		if !inst.HasDeliveryDates() {
			continue
		}

		delivered := truncateDay(inst.DeliveryDate)
		desired := truncateDay(inst.DesiredDate)
		month := delivered.Format(model.MonthLayout)

		bucket, ok := byMonth[month]
		if !ok {
			bucket = &model.DelayBucket{Month: month, KOMantis: []string{}}
			byMonth[month] = bucket
		}

		if delivered.After(desired) {
			bucket.KO++
			bucket.KOMantis = append(bucket.KOMantis, inst.Mantis)
		} else {
			bucket.OK++
		}
	}

	buckets := make([]model.DelayBucket, 0, len(byMonth))
	for _, b := range byMonth {
		b.Label = FormatMonth(b.Month, locale)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })

	return buckets
}
