package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New(logrus.New(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	t.Cleanup(cancel)
	return l, cancel
}

func TestLoop_CallRunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Call(context.Background(), func() { got = append(got, 99) }))
	require.Equal(t, []int{0, 1, 2, 3, 4, 99}, got)
}

func TestLoop_AsyncDeliversOnLoop(t *testing.T) {
	l, _ := startLoop(t)

	results := make(chan string, 1)
	Async(context.Background(), l, func(context.Context) (string, error) {
		return "ok", nil
	}, func(v string, err error) {
		require.NoError(t, err)
		results <- v
	})

	select {
	case v := <-results:
		require.Equal(t, "ok", v)
	case <-time.After(time.Second):
		t.Fatal("async result not delivered")
	}
}

func TestLoop_RecoversFromPanic(t *testing.T) {
	l, _ := startLoop(t)

	l.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, l.Call(context.Background(), func() { ran = true }))
	require.True(t, ran)
}

func TestLoop_StoppedLoopRejectsWork(t *testing.T) {
	l := New(logrus.New(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	require.False(t, l.Post(func() {}))
	err := l.Call(context.Background(), func() {})
	require.True(t, errors.Is(err, ErrStopped))
}

func TestLoop_AfterTaskRunsAfterEveryTask(t *testing.T) {
	l := New(logrus.New(), 8)
	var log []string
	l.SetAfterTask(func() { log = append(log, "after") })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = l.Run(ctx) }()

	require.NoError(t, l.Call(context.Background(), func() { log = append(log, "task") }))

	done := make(chan struct{})
	Async(context.Background(), l, func(context.Context) (int, error) { return 1, nil }, func(int, error) {
		log = append(log, "completion")
		close(done)
	})
	<-done

	var snapshot []string
	require.NoError(t, l.Call(context.Background(), func() { snapshot = append([]string(nil), log...) }))
	require.Equal(t, []string{"task", "after", "after", "completion", "after"}, snapshot[:5])
}
