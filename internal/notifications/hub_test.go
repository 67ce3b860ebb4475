package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(clientA)
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(clientB)
	assert.False(t, hub.IsOnline(10))

	// Unregistering twice is harmless
	hub.UnregisterClient(clientB)
	assert.False(t, hub.IsOnline(10))
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(5, nil)
	assert.Error(t, err)

	// Other users are unaffected
	_, err = hub.Register(6, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()

	target, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "hello")

	select {
	case msg := <-target.Send:
		assert.Equal(t, "hello", string(msg))
	default:
		t.Fatal("target client received no message")
	}

	select {
	case <-other.Send:
		t.Fatal("other user should not receive the message")
	default:
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.BroadcastAll("ping")

	assert.Equal(t, "ping", string(<-a.Send))
	assert.Equal(t, "ping", string(<-b.Send))
}

func TestHub_StartWiringForwardsPublishedEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	client, err := hub.Register(42, nil)
	require.NoError(t, err)

	payload, err := EncodeEvent("notification", map[string]any{"kind": "follow"})
	require.NoError(t, err)
	require.NoError(t, notifier.PublishUser(context.Background(), 42, payload))

	var got string
	assert.Eventually(t, func() bool {
		select {
		case msg := <-client.Send:
			got = string(msg)
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)
	assert.JSONEq(t, `{"type":"notification","payload":{"kind":"follow"}}`, got)
}

func TestHub_StartWiringForwardsBroadcasts(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	payload, err := EncodeEvent("server_shutdown", nil)
	require.NoError(t, err)
	require.NoError(t, notifier.PublishBroadcast(context.Background(), payload))

	// Every connected client gets the broadcast, regardless of user
	for _, client := range []*Client{a, b} {
		var got string
		assert.Eventually(t, func() bool {
			select {
			case msg := <-client.Send:
				got = string(msg)
				return true
			default:
				return false
			}
		}, testEventuallyTimeout, testPollInterval)
		assert.JSONEq(t, `{"type":"server_shutdown","payload":null}`, got)
	}
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "payload"))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "payload"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), nil))
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_, _ string) {
		atomic.AddInt32(&received, 1)
	}))

	require.NoError(t, n.PublishUser(context.Background(), 7, "before-cancel"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, testEventuallyTimeout, testPollInterval)

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishUser(context.Background(), 7, "after-cancel"))
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&received) > 1
	}, 20*testPollInterval, testPollInterval)
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}
