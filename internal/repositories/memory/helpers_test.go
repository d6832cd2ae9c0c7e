package memory

import (
	"testing"
	"time"

	"billing-backend/internal/timeutil"

	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutil.ParseInIST(timeutil.DateLayout, s)
	require.NoError(t, err)
	return d
}
