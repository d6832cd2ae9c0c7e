package memory

import (
	"sort"
	"strings"
	"time"

	"billing-backend/internal/timeutil"
)

func now() time.Time {
	return timeutil.Now()
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func limit[T any](items []T, n int) []T {
	if n <= 0 || n > 1000 {
		n = 100
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
