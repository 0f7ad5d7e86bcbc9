package services

import (
	"context"
	"errors"
	"rally-metrics-go/models"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type refreshStub struct {
	*DemoPlayerService
	refreshes atomic.Int32
	changed   bool
	err       error
}

func (r *refreshStub) Refresh(_ context.Context) (bool, error) {
	r.refreshes.Add(1)
	return r.changed, r.err
}

func TestCacheWarmerRefreshesAndNotifies(t *testing.T) {
	stub := &refreshStub{DemoPlayerService: NewDemoPlayerServiceWithPlayers([]models.Player{}), changed: true}
	var notified atomic.Int32

	cw := NewCacheWarmer(stub, 10*time.Millisecond, func() { notified.Add(1) })
	cw.Start()
	cw.Start()
	require.True(t, cw.IsRunning())

	require.Eventually(t, func() bool { return stub.refreshes.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cw.Stop()
	cw.Stop()
	require.False(t, cw.IsRunning())

	require.Equal(t, stub.refreshes.Load(), notified.Load())
}

func TestCacheWarmerSkipsNotifyWithoutChange(t *testing.T) {
	stub := &refreshStub{DemoPlayerService: NewDemoPlayerServiceWithPlayers(nil), err: errors.New("down")}
	var notified atomic.Int32

	cw := NewCacheWarmer(stub, time.Hour, func() { notified.Add(1) })
	cw.Start()
	require.Eventually(t, func() bool { return stub.refreshes.Load() == 1 }, time.Second, 5*time.Millisecond)
	cw.Stop()

	require.Zero(t, notified.Load())
}
