// Package eta holds the per-tenant preparation-time estimate.
//
// Each tenant owns one Stat: the number of samples folded in so far and the
// current exponential moving average in seconds. A sample is the time an
// order spent between acceptance and being served. The averaging divisor is
// capped so the estimate keeps following recent conditions instead of
// settling into a lifetime mean.
//
// Update rule:
//
//	ema' = ema + (sample - ema) / min(n + 1, cap)
//	n'   = n + 1
package eta
