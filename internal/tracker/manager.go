package tracker

import (
	"io"
	"sync"
	"time"

	"github.com/dexwatch/swap-tracker/pkg/common/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// Manager owns the set of workers and the shared resources that outlive
// them (cursor store, queue connections).
type Manager struct {
	workers []*Worker
	closers []io.Closer
}

func NewManager(workers []*Worker, closers []io.Closer) *Manager {
	return &Manager{workers: workers, closers: closers}
}

// Start launches all workers.
func (m *Manager) Start() {
	for _, w := range m.workers {
		w.Start()
	}
}

// Stop shuts down all workers concurrently with a timeout, then closes
// shared resources.
func (m *Manager) Stop() {
	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, w := range m.workers {
			wg.Add(1)
			go func(w *Worker) {
				defer wg.Done()
				w.Stop()
			}(w)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("All workers stopped")
	case <-time.After(defaultShutdownTimeout):
		logger.Warn("Worker shutdown timed out, proceeding with resource cleanup",
			"timeout", defaultShutdownTimeout)
	}

	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			logger.Error("Close resource failed", "err", err)
		}
	}
}
