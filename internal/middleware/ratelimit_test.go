package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllowsWithinCapacity(t *testing.T) {
	l := NewTokenBucket(3, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("1.2.3.4"), "request %d should pass", i)
	}
	assert.False(t, l.allow("1.2.3.4"), "capacity exhausted")
}

func TestTokenBucketIsPerKey(t *testing.T) {
	l := NewTokenBucket(1, 1)
	assert.True(t, l.allow("1.2.3.4"))
	assert.False(t, l.allow("1.2.3.4"))
	assert.True(t, l.allow("5.6.7.8"), "other clients unaffected")
}
