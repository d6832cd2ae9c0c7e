package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseOptionalDate("2026-03-31")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "31.03.2026", FormatDisplayDate(d))

	_, err = ParseOptionalDate("31/03/2026")
	assert.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2026, time.March, 31, 22, 15, 0, 0, time.UTC) // 01 Apr 03:45 IST
	assert.Equal(t, "2026-04-01 00:00:00", StartOfDay(at).Format("2006-01-02 15:04:05"))
	assert.Equal(t, "2026-04-01 23:59:59", EndOfDay(at).Format("2006-01-02 15:04:05"))
}
