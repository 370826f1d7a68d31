package gdecs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignalQueueDrainInPushOrder(t *testing.T) {
	var q signalQueue[int]
	for i := range 5 {
		q.push(i)
	}

	require.Equal(t, 5, q.pending())
	require.Equal(t, []int{0, 1, 2, 3, 4}, q.drain())
	require.Zero(t, q.pending())
	require.Empty(t, q.drain())
}

func TestSignalQueuePushAfterDrainSurfacesNextDrain(t *testing.T) {
	var q signalQueue[int]

	q.push(1)
	require.Equal(t, []int{1}, q.drain())

	q.push(2)
	q.push(3)
	require.Equal(t, []int{2, 3}, q.drain())
}

func TestSignalQueueProducerRunsFreeDuringDrains(t *testing.T) {
	const total = 10000
	var q signalQueue[int]

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range total {
			q.push(i)
		}
	}()

	// Drain concurrently with the producer. Every signal must arrive exactly
	// once, in push order, across however many drains it takes.
	var got []int
	for len(got) < total {
		got = append(got, q.drain()...)
	}
	wg.Wait()
	got = append(got, q.drain()...)

	require.Len(t, got, total)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}
