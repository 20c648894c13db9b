package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_CapsWithinWindow(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		req.True(rl.Allow("A"))
	}
	req.False(rl.Allow("A"))

	// Other connections have their own window.
	req.True(rl.Allow("B"))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(2, 20*time.Millisecond)

	req.True(rl.Allow("A"))
	req.True(rl.Allow("A"))
	req.False(rl.Allow("A"))

	time.Sleep(30 * time.Millisecond)
	req.True(rl.Allow("A"))
}

func TestRateLimiter_Forget(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(1, time.Minute)

	req.True(rl.Allow("A"))
	req.False(rl.Allow("A"))

	rl.Forget("A")
	req.True(rl.Allow("A"))
}

func TestRateLimiter_NilAndDisabled(t *testing.T) {
	req := require.New(t)

	var nilRL *RateLimiter
	req.True(nilRL.Allow("A"))
	nilRL.Forget("A")

	off := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		req.True(off.Allow("A"))
	}
}
