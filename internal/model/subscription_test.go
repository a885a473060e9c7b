package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datePtr(t time.Time) *time.Time {
	d := t.Truncate(24 * time.Hour)
	return &d
}

func TestExpireIfDue(t *testing.T) {
	now := time.Now()

	t.Run("past expiry flips active off", func(t *testing.T) {
		sub := &Subscription{Active: true, ExpiresOn: datePtr(now.AddDate(0, 0, -1))}
		assert.True(t, sub.ExpireIfDue(now))
		assert.False(t, sub.Active)
	})

	t.Run("flipping twice is safe", func(t *testing.T) {
		sub := &Subscription{Active: true, ExpiresOn: datePtr(now.AddDate(0, 0, -1))}
		assert.True(t, sub.ExpireIfDue(now))
		assert.False(t, sub.ExpireIfDue(now))
		assert.False(t, sub.Active)
	})

	t.Run("expiring today is still usable", func(t *testing.T) {
		sub := &Subscription{Active: true, ExpiresOn: datePtr(now)}
		assert.False(t, sub.ExpireIfDue(now))
		assert.True(t, sub.Active)
	})

	t.Run("future expiry is untouched", func(t *testing.T) {
		sub := &Subscription{Active: true, ExpiresOn: datePtr(now.AddDate(0, 1, 0))}
		assert.False(t, sub.ExpireIfDue(now))
		assert.True(t, sub.Active)
	})

	t.Run("no expiry date never expires", func(t *testing.T) {
		sub := &Subscription{Active: true}
		assert.False(t, sub.ExpireIfDue(now))
		assert.True(t, sub.Active)
	})

	t.Run("inactive subscription is left alone", func(t *testing.T) {
		sub := &Subscription{Active: false, ExpiresOn: datePtr(now.AddDate(0, 0, -1))}
		assert.False(t, sub.ExpireIfDue(now))
	})

	t.Run("nil subscription is a no-op", func(t *testing.T) {
		var sub *Subscription
		assert.False(t, sub.ExpireIfDue(now))
	})
}
