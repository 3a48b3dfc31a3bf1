package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runServer(t *testing.T) string {
	t.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	srv := natsserver.RunServer(&opts)
	t.Cleanup(srv.Shutdown)
	return srv.ClientURL()
}

func TestNATSPublisher_PublishAndClose(t *testing.T) {
	url := runServer(t)

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	var mu sync.Mutex
	var received []Event
	_, err = sub.Subscribe("wallet.>", func(msg *nats.Msg) {
		var e Event
		if assert.NoError(t, json.Unmarshal(msg.Data, &e)) {
			mu.Lock()
			received = append(received, e)
			mu.Unlock()
		}
	})
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := ConnectNATS(url)
	require.NoError(t, err)

	const total = 200
	for i := 0; i < total; i++ {
		require.NoError(t, pub.Publish(context.Background(), New(SubjectDepositCompleted, "alice", decimal.NewFromInt(int64(i)), "")))
	}

	pub.Close()
	assert.True(t, pub.nc.IsClosed(), "Close returns only once the drain finished")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == total
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "wallet.deposit.completed", received[0].Type)
	mu.Unlock()

	// a second Close on a closed connection returns without waiting
	done := make(chan struct{})
	go func() {
		pub.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close on a closed connection blocked")
	}
}

func TestNATSPublisher_RespectsCancelledContext(t *testing.T) {
	pub, err := ConnectNATS(runServer(t))
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, New(SubjectTournamentJoined, "alice", decimal.Zero, "1")), context.Canceled)
}
