package mainloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopPostRunsInOrder(t *testing.T) {
	l := New(8)
	var got []int
	for i := 1; i <= 3; i++ {
		v := i
		require.True(t, l.Post(func() { got = append(got, v) }))
	}

	assert.Equal(t, 3, l.Drain())
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestLoopPostBeyondQueueSizeKeepsOrder(t *testing.T) {
	l := New(2)
	var got []int
	for i := 1; i <= 5; i++ {
		v := i
		require.True(t, l.Post(func() { got = append(got, v) }))
	}

	assert.Equal(t, 5, l.Drain())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestLoopCallbackCanPostWhileQueueIsFull(t *testing.T) {
	l := New(1)
	var got []string
	l.Post(func() {
		got = append(got, "first")
		for i := 0; i < 3; i++ {
			l.Post(func() { got = append(got, "nested") })
		}
		l.PostCoalesced("reload", func() { got = append(got, "reload") })
	})

	done := make(chan int)
	go func() { done <- l.Drain() }()

	select {
	case n := <-done:
		assert.Equal(t, 5, n)
	case <-time.After(2 * time.Second):
		t.Fatal("loop deadlocked posting from its own callback")
	}
	assert.Equal(t, []string{"first", "nested", "nested", "nested", "reload"}, got)
}

func TestLoopPostCoalescedMergesBurstIntoSingleRun(t *testing.T) {
	l := New(8)

	value := 0
	runs := 0
	for i := 1; i <= 5; i++ {
		v := i
		l.PostCoalesced("reload", func() {
			value = v
			runs++
		})
	}

	if n := l.Drain(); n != 1 {
		t.Fatalf("expected 1 scheduled callback, got %d", n)
	}
	if value != 5 || runs != 1 {
		t.Fatalf("expected latest callback to run once, got value=%d runs=%d", value, runs)
	}

	l.PostCoalesced("reload", func() { runs++ })
	l.Drain()
	assert.Equal(t, 2, runs, "a new burst after the run schedules again")
}

func TestLoopDropsWorkAfterDestroy(t *testing.T) {
	l := New(4)

	ran := false
	l.PostCoalesced("ghost", func() { ran = true })
	l.Destroy()
	l.Drain()

	if ran {
		t.Fatalf("expected coalesced work to be dropped after destroy")
	}
	assert.False(t, l.Post(func() { ran = true }))
	assert.Equal(t, 0, l.Drain())
}

func TestLoopAfterFuncFiresOnLoop(t *testing.T) {
	l := New(4)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fired := make(chan struct{})
	l.AfterFunc(time.Millisecond, func() { close(fired) })

	go func() { _ = l.Run(ctx) }()

	select {
	case <-fired:
	case <-ctx.Done():
		t.Fatal("timer callback never ran")
	}
}

func TestLoopAfterFuncCancelSkipsQueuedCallback(t *testing.T) {
	l := New(4)

	ran := false
	task := l.AfterFunc(time.Millisecond, func() { ran = true })

	// Wait for the timer to queue its callback without running the loop.
	deadline := time.Now().Add(2 * time.Second)
	for len(l.queue) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.Len(t, l.queue, 1)

	assert.True(t, task.Cancel())
	assert.Equal(t, 1, l.Drain())
	assert.False(t, ran)
	assert.False(t, task.Cancel(), "second cancel reports nothing to cancel")
}

func TestManualAdvanceRunsDueTasksInOrder(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "c") })
	late := m.AfterFunc(50*time.Millisecond, func() { order = append(order, "late") })

	assert.Equal(t, 0, m.Advance(5*time.Millisecond))
	assert.Equal(t, 3, m.Advance(15*time.Millisecond))
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 1, m.Pending())

	assert.True(t, late.Cancel())
	assert.Equal(t, 0, m.Advance(time.Second))
	assert.Equal(t, 0, m.Pending())
}

func TestManualAdvanceRunsTasksScheduledByCallbacks(t *testing.T) {
	m := NewManual()
	ran := 0
	m.AfterFunc(time.Millisecond, func() {
		ran++
		m.AfterFunc(time.Millisecond, func() { ran++ })
	})

	assert.Equal(t, 2, m.Advance(10*time.Millisecond))
	assert.Equal(t, 2, ran)
}
