package platform_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/owllab/ravennakit/platform"
)

func TestDefaultClockIsMonotonicAndSingleton(t *testing.T) {
	a := platform.Default()
	b := platform.Default()

	t0 := a.NowNanos()
	time.Sleep(time.Millisecond)
	t1 := b.NowNanos()

	assert.Greater(t, t1, t0)
}

func TestSupportsDestAddrDeliveryIsStableAcrossCalls(t *testing.T) {
	first := platform.SupportsDestAddrDelivery()
	second := platform.SupportsDestAddrDelivery()
	assert.Equal(t, first, second)
}
