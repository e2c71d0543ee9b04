package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distrisur/internal/core/id"
)

func TestClassifyExpiration(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name       string
		expiration *time.Time
		want       ExpirationStatus
	}{
		{"nil is always ok", nil, StatusOK},
		{"past is expired", at(-time.Hour), StatusExpired},
		{"within 7 days is critical", at(3 * 24 * time.Hour), StatusCritical},
		{"just under 7 days is critical", at(7*24*time.Hour - time.Minute), StatusCritical},
		{"within 30 days is warning", at(15 * 24 * time.Hour), StatusWarning},
		{"beyond 30 days is ok", at(60 * 24 * time.Hour), StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyExpiration(tt.expiration, now))
		})
	}
}

func TestBuildExpirationReport(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	batch := func(qty int64, expiration *time.Time) *Batch {
		return &Batch{
			ID:             id.New(),
			ProductID:      id.New(),
			WarehouseID:    id.New(),
			BatchNumber:    "L-001",
			LocationZone:   "A1",
			Quantity:       qty,
			ExpirationDate: expiration,
		}
	}
	at := func(days int) *time.Time {
		ts := now.Add(time.Duration(days) * 24 * time.Hour)
		return &ts
	}

	report := BuildExpirationReport([]*Batch{
		batch(10, at(-5)),
		batch(10, at(2)),
		batch(10, at(20)),
		batch(10, at(90)),
		batch(10, nil),
		batch(0, at(-5)), // emptied, must not appear
	}, now)

	require.Len(t, report.Expired, 1)
	require.Len(t, report.Critical, 1)
	require.Len(t, report.Warning, 1)
	require.Len(t, report.OK, 2)

	require.NotNil(t, report.Expired[0].DaysExpired)
	assert.Equal(t, 5, *report.Expired[0].DaysExpired)

	require.NotNil(t, report.Critical[0].DaysUntilExpiry)
	assert.Equal(t, 2, *report.Critical[0].DaysUntilExpiry)

	assert.Nil(t, report.OK[1].DaysUntilExpiry)
}
