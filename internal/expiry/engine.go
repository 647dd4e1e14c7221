package expiry

import (
	"sort"
	"time"

	"github.com/solohsu29/gondola-manager/internal/entity"
)

// ExpiringSoonDays is the window in which a live certificate counts as
// "expiring" rather than "valid".
const ExpiringSoonDays = 30

// PendingInspectionDays is the window in which a gondola's next inspection
// counts as pending.
const PendingInspectionDays = 7

// Classify derives a certificate status and the whole days remaining from an
// expiry date and the current time.
//
//	daysRemaining < 0   -> expired
//	daysRemaining <= 30 -> expiring
//	otherwise           -> valid
func Classify(expiryDate, now time.Time) (status string, daysRemaining int) {
	days := daysUntil(expiryDate, now)
	switch {
	case days < 0:
		return entity.DocStatusExpired, days
	case days <= ExpiringSoonDays:
		return entity.DocStatusExpiring, days
	default:
		return entity.DocStatusValid, days
	}
}

// daysUntil is the floor of (target - now) in whole days; negative once the
// target has passed.
func daysUntil(target, now time.Time) int {
	d := target.Sub(now)
	days := int(d.Hours() / 24)
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// ExpiringCertificates returns the entries that need attention on the
// dashboard: both expiring and already-expired.
func ExpiringCertificates(entries []entity.CertificateExpiry) []entity.CertificateExpiry {
	out := []entity.CertificateExpiry{}
	for _, e := range entries {
		if e.Status == entity.DocStatusExpiring || e.Status == entity.DocStatusExpired {
			out = append(out, e)
		}
	}
	return out
}

// SortForWidget orders certificate entries for the expiry widget: expired
// entries first, oldest expiry first, then everything else ascending by days
// remaining.
func SortForWidget(entries []entity.CertificateExpiry) []entity.CertificateExpiry {
	sorted := make([]entity.CertificateExpiry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		aExpired := a.Status == entity.DocStatusExpired
		bExpired := b.Status == entity.DocStatusExpired
		if aExpired != bExpired {
			return aExpired
		}
		if aExpired && bExpired {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		return a.DaysRemaining < b.DaysRemaining
	})
	return sorted
}

// PendingInspections returns gondolas whose next inspection falls within the
// pending window. Overdue inspections are included: a signed day difference
// is used rather than the absolute one, so an inspection ten days overdue
// still shows as pending.
func PendingInspections(gondolas []entity.Gondola, now time.Time) []entity.Gondola {
	out := []entity.Gondola{}
	for _, g := range gondolas {
		if g.NextInspection == nil {
			continue
		}
		if daysUntil(*g.NextInspection, now) <= PendingInspectionDays {
			out = append(out, g)
		}
	}
	return out
}
