package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageIDsStrictlyIncrease(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	gen := &MessageIDs{now: func() time.Time { return fixed }}

	assert.Equal(t, "1700000000000", gen.Next())
	assert.Equal(t, "1700000000001", gen.Next())
	assert.Equal(t, "1700000000002", gen.Next())
}

func TestMessageIDsSurviveClockStepBack(t *testing.T) {
	now := time.UnixMilli(2_000)
	gen := &MessageIDs{now: func() time.Time { return now }}

	assert.Equal(t, "2000", gen.Next())
	now = time.UnixMilli(1_000)
	assert.Equal(t, "2001", gen.Next())
	now = time.UnixMilli(5_000)
	assert.Equal(t, "5000", gen.Next())
}
