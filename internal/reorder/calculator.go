package reorder

import "math"

// CalculateReorderLevel derives a reorder level from daily usage history.
//
//	level = avg*leadTime + (max-avg)*leadTime + avg*safetyDays
//
// The middle term buffers against demand spikes during the lead time; the
// last one keeps safetyDays of average demand in hand. Returns nil when there
// is no usage history or the lead time is not positive.
func CalculateReorderLevel(dailyUsage []int, leadTimeDays, safetyDays int) *int {
	if len(dailyUsage) == 0 || leadTimeDays <= 0 {
		return nil
	}
	if safetyDays < 0 {
		safetyDays = 0
	}

	var total, peak float64
	for _, u := range dailyUsage {
		v := math.Max(0, float64(u))
		total += v
		peak = math.Max(peak, v)
	}
	avg := total / float64(len(dailyUsage))

	lead := float64(leadTimeDays)
	level := avg*lead + (peak-avg)*lead + avg*float64(safetyDays)
	return Int(int(math.Ceil(level)))
}

// IntelligentReorderLevel derives a reorder level from predicted daily
// demand. Demand over the lead time is summed from the predictions; when the
// lead time runs past the forecast horizon the remaining days use the
// average predicted demand. A buffer of safetyDays of average demand is added.
// Returns nil when there are no predictions or the lead time is not positive.
func IntelligentReorderLevel(predicted []float64, leadTimeDays, safetyDays int) *int {
	if len(predicted) == 0 || leadTimeDays <= 0 {
		return nil
	}
	if safetyDays < 0 {
		safetyDays = 0
	}

	var total float64
	for _, p := range predicted {
		total += math.Max(0, p)
	}
	avg := total / float64(len(predicted))

	var leadDemand float64
	for i := 0; i < leadTimeDays; i++ {
		if i < len(predicted) {
			leadDemand += math.Max(0, predicted[i])
		} else {
			leadDemand += avg
		}
	}

	level := leadDemand + avg*float64(safetyDays)
	return Int(int(math.Ceil(level)))
}
