package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRecvOrder(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()

	for i := 1; i <= 3; i++ {
		ch.Send(i)
	}

	for want := 1; want <= 3; want++ {
		got, err := rx.TryRecv()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := rx.TryRecv()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFanOutDeliversToAllReceivers(t *testing.T) {
	ch := New[string](8)
	a := ch.Subscribe()
	b := ch.Subscribe()

	ch.Send("one")
	ch.Send("two")

	for _, rx := range []*Receiver[string]{a, b} {
		got, err := rx.TryRecv()
		require.NoError(t, err)
		assert.Equal(t, "one", got)

		got, err = rx.TryRecv()
		require.NoError(t, err)
		assert.Equal(t, "two", got)
	}
}

func TestSubscribeSeesOnlyNewValues(t *testing.T) {
	ch := New[int](8)
	ch.Send(1)
	ch.Send(2)

	rx := ch.Subscribe()
	ch.Send(3)

	got, err := rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = rx.TryRecv()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLaggedReceiverSkipsForward(t *testing.T) {
	ch := New[int](4)
	rx := ch.Subscribe()

	// Six sends into a capacity-4 ring overwrite the two oldest values.
	for i := 0; i < 6; i++ {
		ch.Send(i)
	}

	_, err := rx.TryRecv()
	var lag *LagError
	require.ErrorAs(t, err, &lag)
	assert.Equal(t, uint64(2), lag.Count)

	// The next receive returns the oldest retained value, strictly later in
	// send order than anything delivered before the lag.
	got, err := rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	for want := 3; want <= 5; want++ {
		got, err = rx.TryRecv()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLagCountsAllOverwrites(t *testing.T) {
	ch := New[int](4)
	rx := ch.Subscribe()

	for i := 0; i < 100; i++ {
		ch.Send(i)
	}

	_, err := rx.TryRecv()
	var lag *LagError
	require.ErrorAs(t, err, &lag)
	assert.Equal(t, uint64(96), lag.Count)

	got, err := rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 96, got)
}

func TestCloseDrainsThenReports(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()

	ch.Send(1)
	ch.Send(2)
	ch.Close()

	got, err := rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	_, err = rx.TryRecv()
	assert.ErrorIs(t, err, ErrClosed)

	// Idempotent.
	ch.Close()
	_, err = rx.TryRecv()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSendOnClosedChannelIsNoOp(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()
	ch.Close()

	assert.Equal(t, 0, ch.Send(7))

	_, err := rx.TryRecv()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubscribeAfterCloseObservesClosed(t *testing.T) {
	ch := New[int](8)
	ch.Close()

	rx := ch.Subscribe()
	_, err := rx.TryRecv()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReceiverCount(t *testing.T) {
	ch := New[int](8)
	assert.Equal(t, 0, ch.ReceiverCount())

	a := ch.Subscribe()
	b := ch.Subscribe()
	assert.Equal(t, 2, ch.ReceiverCount())

	a.Close()
	assert.Equal(t, 1, ch.ReceiverCount())

	// Idempotent.
	a.Close()
	assert.Equal(t, 1, ch.ReceiverCount())

	b.Close()
	assert.Equal(t, 0, ch.ReceiverCount())
}

func TestClosedReceiverReportsClosed(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()
	ch.Send(1)
	rx.Close()

	_, err := rx.TryRecv()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWaitSignalsPendingValue(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()

	go ch.Send(42)

	select {
	case <-rx.Wait():
	case <-time.After(2 * time.Second):
		t.Fatal("wake signal never arrived")
	}

	got, err := rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestWaitResignaledWhileValuesRemain(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()

	ch.Send(1)
	ch.Send(2)

	// Consume the single buffered wake token, then receive one value; the
	// receiver must re-arm the signal for the value still pending.
	<-rx.Wait()
	_, err := rx.TryRecv()
	require.NoError(t, err)

	select {
	case <-rx.Wait():
	case <-time.After(2 * time.Second):
		t.Fatal("wake signal was not re-armed")
	}

	got, err := rx.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestRecvBlocksUntilSend(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()

	done := make(chan int, 1)
	go func() {
		v, err := rx.Recv(context.Background())
		if err != nil {
			done <- -1
			return
		}
		done <- v
	}()

	time.Sleep(20 * time.Millisecond)
	ch.Send(9)

	select {
	case got := <-done:
		assert.Equal(t, 9, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Recv never returned")
	}
}

func TestRecvHonorsContext(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := rx.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentSendersDeliverEverything(t *testing.T) {
	const senders = 8
	const perSender = 50

	ch := New[int](senders * perSender)
	rx := ch.Subscribe()

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				ch.Send(base + i)
			}
		}(s * perSender)
	}
	wg.Wait()

	seen := make(map[int]bool, senders*perSender)
	lastPerSender := make(map[int]int)
	for i := 0; i < senders*perSender; i++ {
		v, err := rx.TryRecv()
		require.NoError(t, err)
		require.False(t, seen[v], "value %d delivered twice", v)
		seen[v] = true

		// Per-sender order is preserved in the interleaving.
		sender := v / perSender
		if last, ok := lastPerSender[sender]; ok {
			assert.Greater(t, v, last)
		}
		lastPerSender[sender] = v
	}

	_, err := rx.TryRecv()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestErrorText(t *testing.T) {
	err := &LagError{Count: 3}
	assert.Contains(t, err.Error(), "3")
	assert.True(t, errors.As(error(err), new(*LagError)))
}
