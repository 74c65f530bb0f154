package thread

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThread_RunWait(t *testing.T) {
	root := newRoot(t)
	var ran atomic.Bool
	th := NewThread(root, "worker", func(th *Thread) {
		ran.Store(th.Name() == "worker")
	})
	require.Equal(t, ThreadInit, th.State())

	th.Run()
	th.Wait()
	require.True(t, ran.Load())
	require.Equal(t, ThreadFinished, th.State())
	requireClosed(t, th.Done(), "done channel")
}

func TestThread_Misuse(t *testing.T) {
	root := newRoot(t)
	th := NewThread(root, "idle", func(*Thread) {})
	requireInvariant(t, th.Wait)

	th.Run()
	requireInvariant(t, th.Run)
	th.Wait()

	requireInvariant(t, func() { NewThread(root, "nil", nil) })
}

func TestThread_DestroyWaits(t *testing.T) {
	root := newRoot(t)
	release := make(chan struct{})
	th := Go(root, "blocked", func(*Thread) { <-release })

	destroyed := make(chan struct{})
	go func() {
		th.Destroy()
		close(destroyed)
	}()
	requireOpen(t, destroyed, 20*time.Millisecond, "destroy did not wait for the goroutine")

	close(release)
	requireClosed(t, destroyed, "destroy never returned")
	require.Empty(t, root.Children())
}

func TestThread_DestroyUnstarted(t *testing.T) {
	root := newRoot(t)
	th := NewThread(root, "never", func(*Thread) { t.Error("must not run") })
	th.Destroy()
	require.Empty(t, root.Children())
}

func TestThreadState_String(t *testing.T) {
	require.Equal(t, "init", ThreadInit.String())
	require.Equal(t, "running", ThreadRunning.String())
	require.Equal(t, "finished", ThreadFinished.String())
	require.Equal(t, "unknown", ThreadState(9).String())
}
