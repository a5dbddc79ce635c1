package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{"grouping", 1234.5, "EUR", "1.234,50\u00a0€"},
		{"default code", 0, "", "0,00\u00a0€"},
		{"negative", -99.99, "EUR", "-99,99\u00a0€"},
		{"millions", 1250000, "EUR", "1.250.000,00\u00a0€"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FormatCurrency(tt.amount, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCurrency_UnknownCode(t *testing.T) {
	t.Parallel()
	_, err := FormatCurrency(1, "XX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format: currency")
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "12,50\u00a0%", FormatPercent(12.5, 2))
	assert.Equal(t, "75\u00a0%", FormatPercent(75, 0))
	assert.Equal(t, "3\u00a0%", FormatPercent(3, -1))
}

func TestFormatDate(t *testing.T) {
	t.Parallel()
	ts := time.Date(2025, 3, 7, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "07.03.2025", FormatDate(ts))
	assert.Equal(t, "07.03.2025, 14:05", FormatDateTime(ts))
	assert.Equal(t, "03/07/2025", ForLocale("en-US").Date(ts))
}

func TestForLocale_Fallback(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultLocale, ForLocale("").Locale())
	assert.Equal(t, DefaultLocale, ForLocale("not a locale!").Locale())
	assert.Equal(t, "1,234.50", ForLocale("en-US").Number(1234.5, 2))
}

func TestForLocale_AcceptLanguage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "en-US", ForLocale("en-US,en;q=0.9,de;q=0.8").Locale().String())
	assert.Equal(t, "en-GB", ForLocale("fr;q=0.2, en-GB;q=0.9").Locale().String())
}
