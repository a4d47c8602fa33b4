package eta

import (
	"math"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// DefaultWindowCap bounds the effective sample count of the moving average,
// so the estimate keeps adapting once a tenant has served many orders.
const DefaultWindowCap = 20

// Stat is one tenant's running estimate. The zero value of a fresh tenant is
// NewStat(tenant, 0, 0).
type Stat struct {
	tenant     kernel.TenantID
	windowN    int64
	emaSeconds float64
}

// NewStat restores a tenant's estimate.
//
// Parameters:
//   - tenant: owning tenant
//   - windowN: samples folded so far (must be non-negative)
//   - emaSeconds: current average in seconds (finite, non-negative)
//
// Returns:
//   - Stat: the estimate
//   - error: validation error if any value is out of range
//
// Example:
//
//	stat, _ := NewStat(tenant, 0, 0)
//	stat = stat.Observe(12*time.Minute, DefaultWindowCap)
func NewStat(tenant kernel.TenantID, windowN int64, emaSeconds float64) (Stat, error) {
	if err := tenant.Validate(); err != nil {
		return Stat{}, err
	}
	if windowN < 0 {
		return Stat{}, errs.NewValueIsOutOfRangeError("window_n", windowN, 0, int64(math.MaxInt64))
	}
	if emaSeconds < 0 || math.IsNaN(emaSeconds) || math.IsInf(emaSeconds, 0) {
		return Stat{}, errs.NewValueIsOutOfRangeError("ema_seconds", emaSeconds, 0, math.MaxFloat64)
	}
	return Stat{tenant: tenant, windowN: windowN, emaSeconds: emaSeconds}, nil
}

// Tenant returns the tenant the estimate belongs to.
func (s Stat) Tenant() kernel.TenantID { return s.tenant }

// WindowN returns how many samples have been folded in.
func (s Stat) WindowN() int64 { return s.windowN }

// EMASeconds returns the average in seconds, as persisted.
func (s Stat) EMASeconds() float64 { return s.emaSeconds }

// EMA is the current estimate as a duration.
func (s Stat) EMA() time.Duration {
	return time.Duration(s.emaSeconds * float64(time.Second))
}

// Observe folds one sample in and returns the next Stat. The receiver is
// left as is so a caller can compare before and after.
func (s Stat) Observe(sample time.Duration, windowCap int) Stat {
	if windowCap < 1 {
		windowCap = 1
	}
	x := sample.Seconds()
	if x < 0 {
		x = 0
	}

	divisor := s.windowN + 1
	if divisor > int64(windowCap) {
		divisor = int64(windowCap)
	}

	return Stat{
		tenant:     s.tenant,
		windowN:    s.windowN + 1,
		emaSeconds: s.emaSeconds + (x-s.emaSeconds)/float64(divisor),
	}
}

// Remaining is the live ETA of an order at now. READY and every terminal
// status report zero; an order that was never accepted reports the full
// estimate.
func (s Stat) Remaining(status order.Status, acceptedAt *time.Time, now time.Time) time.Duration {
	if status == order.Ready || status.IsTerminal() {
		return 0
	}
	full := s.EMA()
	if acceptedAt == nil {
		return full
	}
	left := full - now.Sub(*acceptedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Seconds rounds a remaining duration up to whole seconds for the wire.
func Seconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}
