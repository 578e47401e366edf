package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_Advance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManual(start)
	assert.Equal(t, start, c.Now())
	c.Advance(5 * time.Minute)
	assert.Equal(t, start.Add(5*time.Minute), c.Now())
}
