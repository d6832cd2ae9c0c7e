package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiscalYear(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	tests := []struct {
		at         time.Time
		startMonth int
		want       string
	}{
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, ist), 4, "25-26"},
		{time.Date(2026, time.March, 31, 23, 59, 0, 0, ist), 4, "25-26"},
		{time.Date(2026, time.January, 15, 0, 0, 0, 0, ist), 4, "25-26"},
		{time.Date(2099, time.December, 1, 0, 0, 0, 0, ist), 4, "99-00"},
		{time.Date(2025, time.June, 1, 0, 0, 0, 0, ist), 1, "25"},
		{time.Date(2025, time.June, 1, 0, 0, 0, 0, ist), 0, "25-26"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FiscalYear(tt.at, tt.startMonth), tt.at.String())
	}
}

func TestFormatAndParse(t *testing.T) {
	number := Format("NH", 52, 4, "25-26")
	assert.Equal(t, "NH/0052/25-26", number)

	prefix, seq, fy, err := Parse(number)
	require.NoError(t, err)
	assert.Equal(t, "NH", prefix)
	assert.Equal(t, 52, seq)
	assert.Equal(t, "25-26", fy)

	assert.Equal(t, "NH/12345/25-26", Format("NH", 12345, 4, "25-26"))
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "NH-0001", "NH/abc/25-26", "NH/0000/25-26", "/0001/25-26", "NH/0001/"} {
		_, _, _, err := Parse(in)
		assert.ErrorIs(t, err, ErrMalformedNumber, in)
	}
}

func TestValidPrefix(t *testing.T) {
	assert.True(t, ValidPrefix("NH"))
	assert.False(t, ValidPrefix(""))
	assert.False(t, ValidPrefix("N/H"))
	assert.False(t, ValidPrefix("N%"))
}

func TestSlugRoundTrip(t *testing.T) {
	tests := []struct {
		number string
		slug   string
	}{
		{"NH/0052/25-26", "NH_0052_25-26"},
		{"AB-CD/0001/25-26", "AB-CD_0001_25-26"},
		{"NH/0007/25", "NH_0007_25"},
		// January fiscal years with a two digit sequence
		{"A-12/12/25", "A-12_12_25"},
		{"A/12/12-25", "A_12_12-25"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.slug, Slug(tt.number))
		assert.Equal(t, tt.number, FromSlug(tt.slug))
	}
	assert.Equal(t, "NH/0052/25-26", FromSlug("NH/0052/25-26"))
	assert.Equal(t, "garbage", FromSlug("garbage"))
}
