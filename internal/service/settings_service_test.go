package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/errors"
	"libraryhub/internal/store/storetest"
)

func TestSettingsService(t *testing.T) {
	svc := NewSettingsService(storetest.Seeded(t))

	settings, err := svc.GetSettings(asJohn())
	require.NoError(t, err)
	assert.Equal(t, 5, settings.MaxBooksPerUser)
	assert.Equal(t, 30, settings.DefaultLoanDuration)
	assert.True(t, decimal.RequireFromString("0.50").Equal(settings.LateFeePerDay))
	assert.Equal(t, 90, settings.MaxLateDays)

	_, err = svc.UpdateSettings(asJohn(), SettingsUpdate{MaxBooksPerUser: ptr(50)})
	assert.ErrorIs(t, err, errors.ErrForbidden)

	fee := decimal.RequireFromString("1.25")
	settings, err = svc.UpdateSettings(asAdmin(), SettingsUpdate{MaxBooksPerUser: ptr(3), LateFeePerDay: &fee})
	require.NoError(t, err)
	assert.Equal(t, 3, settings.MaxBooksPerUser)
	assert.Equal(t, 30, settings.DefaultLoanDuration, "omitted fields are kept")

	settings, err = svc.GetSettings(asJane())
	require.NoError(t, err)
	assert.True(t, fee.Equal(settings.LateFeePerDay))

	tests := []struct {
		name   string
		update SettingsUpdate
	}{
		{"zero cap", SettingsUpdate{MaxBooksPerUser: ptr(0)}},
		{"negative duration", SettingsUpdate{DefaultLoanDuration: ptr(-1)}},
		{"zero late days", SettingsUpdate{MaxLateDays: ptr(0)}},
		{"negative fee", SettingsUpdate{LateFeePerDay: ptr(decimal.NewFromInt(-1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateSettings(asAdmin(), tt.update)
			assert.ErrorIs(t, err, errors.ErrInvalidSettings)
		})
	}
}
