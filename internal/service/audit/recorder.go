package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/logging"
	"janmitra/internal/metrics"
)

const saveTimeout = 5 * time.Second

// Writer persists one audit entry.
type Writer interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// Recorder queues audit entries and writes them from a single goroutine so
// requests never wait on the audit store. Entries are dropped, not blocked
// on, when the buffer is full.
type Recorder struct {
	writer    Writer
	events    chan *domain.AuditLog
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewRecorder(writer Writer, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	r := &Recorder{
		writer: writer,
		events: make(chan *domain.AuditLog, bufferSize),
		stop:   make(chan struct{}),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stop:
			for {
				select {
				case entry := <-r.events:
					r.write(entry)
				default:
					return
				}
			}
		case entry := <-r.events:
			r.write(entry)
		}
	}
}

func (r *Recorder) write(entry *domain.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := r.writer.Create(ctx, entry); err != nil {
		metrics.AuditWriteErrors.Inc()
		logging.Error().Err(err).
			Str("action", entry.Action).
			Str("resource_type", entry.ResourceType).
			Msg("failed to save audit log")
	}
}

// Record enqueues entry without blocking.
func (r *Recorder) Record(entry *domain.AuditLog) {
	if entry == nil {
		return
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	select {
	case r.events <- entry:
	default:
		metrics.AuditEventsDropped.Inc()
		logging.Warn().Str("action", entry.Action).Msg("audit buffer full, dropping entry")
	}
}

// Close stops the writer after draining queued entries.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.stop)
	})
	r.wg.Wait()
	return nil
}
