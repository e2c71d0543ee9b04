package inventory

import (
	"time"

	"distrisur/internal/core/id"
)

// ExpirationStatus buckets a batch by how close its expiration date is.
type ExpirationStatus string

const (
	StatusExpired  ExpirationStatus = "expired"  // expiration_date < now
	StatusCritical ExpirationStatus = "critical" // expires within 7 days
	StatusWarning  ExpirationStatus = "warning"  // expires within 30 days
	StatusOK       ExpirationStatus = "ok"       // later, or no expiration
)

const (
	criticalWindow = 7 * 24 * time.Hour
	warningWindow  = 30 * 24 * time.Hour
)

// ClassifyExpiration buckets an expiration date relative to now.
// Nil expiration is always OK.
func ClassifyExpiration(expiration *time.Time, now time.Time) ExpirationStatus {
	if expiration == nil {
		return StatusOK
	}
	switch {
	case expiration.Before(now):
		return StatusExpired
	case expiration.Before(now.Add(criticalWindow)):
		return StatusCritical
	case expiration.Before(now.Add(warningWindow)):
		return StatusWarning
	default:
		return StatusOK
	}
}

// ExpirationItem is one non-empty batch annotated for expiry reporting.
type ExpirationItem struct {
	BatchID        id.ID            `json:"batchId"`
	ProductID      id.ID            `json:"productId"`
	WarehouseID    id.ID            `json:"warehouseId"`
	BatchNumber    string           `json:"batchNumber"`
	LocationZone   string           `json:"locationZone"`
	Quantity       int64            `json:"quantity"`
	ExpirationDate *time.Time       `json:"expirationDate,omitempty"`
	Status         ExpirationStatus `json:"status"`

	// DaysUntilExpiry is set for batches not yet expired.
	DaysUntilExpiry *int `json:"daysUntilExpiry,omitempty"`

	// DaysExpired is set for already expired batches.
	DaysExpired *int `json:"daysExpired,omitempty"`
}

// ExpirationReport groups non-empty batches into expiry buckets.
type ExpirationReport struct {
	Expired  []ExpirationItem `json:"expired"`
	Critical []ExpirationItem `json:"critical"`
	Warning  []ExpirationItem `json:"warning"`
	OK       []ExpirationItem `json:"ok"`
}

// newExpirationItem annotates a batch for reporting.
func newExpirationItem(b *Batch, now time.Time) ExpirationItem {
	item := ExpirationItem{
		BatchID:        b.ID,
		ProductID:      b.ProductID,
		WarehouseID:    b.WarehouseID,
		BatchNumber:    b.BatchNumber,
		LocationZone:   b.LocationZone,
		Quantity:       b.Quantity,
		ExpirationDate: b.ExpirationDate,
		Status:         ClassifyExpiration(b.ExpirationDate, now),
	}

	if b.ExpirationDate != nil {
		days := int(b.ExpirationDate.Sub(now).Hours() / 24)
		if item.Status == StatusExpired {
			expired := -days
			item.DaysExpired = &expired
		} else {
			item.DaysUntilExpiry = &days
		}
	}

	return item
}

// BuildExpirationReport classifies the given non-empty batches.
func BuildExpirationReport(batches []*Batch, now time.Time) ExpirationReport {
	var report ExpirationReport
	for _, b := range batches {
		if b.Quantity <= 0 {
			continue
		}
		item := newExpirationItem(b, now)
		switch item.Status {
		case StatusExpired:
			report.Expired = append(report.Expired, item)
		case StatusCritical:
			report.Critical = append(report.Critical, item)
		case StatusWarning:
			report.Warning = append(report.Warning, item)
		default:
			report.OK = append(report.OK, item)
		}
	}
	return report
}
