package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_Advance(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	f := NewFake(start)

	assert.Equal(t, start, f.Now())

	f.Advance(6 * time.Second)
	assert.Equal(t, start.Add(6*time.Second), f.Now())

	f.Advance(-time.Second)
	assert.Equal(t, start.Add(5*time.Second), f.Now())
}

func TestFake_SharedThroughInterface(t *testing.T) {
	f := NewFake(time.Unix(100, 0))
	var c Clock = f

	f.Advance(time.Minute)
	assert.Equal(t, int64(160), c.Now().Unix())

	f.Set(time.Unix(5, 0))
	assert.Equal(t, int64(5), c.Now().Unix())
}

func TestSystem_Now(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
