package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestJob_IsExpired(t *testing.T) {
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	assert.False(t, Job{}.IsExpired(now), "no deadline")
	assert.True(t, Job{Deadline: null.TimeFrom(now.Add(-time.Second))}.IsExpired(now))
	assert.False(t, Job{Deadline: null.TimeFrom(now)}.IsExpired(now))
	assert.False(t, Job{Deadline: null.TimeFrom(now.Add(time.Hour))}.IsExpired(now))
}
