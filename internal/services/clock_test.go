package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockUsesItsLocation(t *testing.T) {
	// 2025-01-06 01:00 UTC is still Sunday evening in Montevideo.
	utc := time.Date(2025, 1, 6, 1, 0, 0, 0, time.UTC)
	c := Clock{Now: func() time.Time { return utc }, Location: montevideo}

	assert.Equal(t, "2024-12-30", c.CurrentWeek())
	assert.Equal(t, "2025-01-06", c.NextWeek())
}

func TestNormalizeIdentifiers(t *testing.T) {
	assert.Equal(t, "ana@empresa.com", NormalizeEmail("  Ana@Empresa.com "))
	assert.Equal(t, "AB123", NormalizeFuncNumber(" ab\t1 23 "))
}
