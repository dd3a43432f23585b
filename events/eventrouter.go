package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mezonai/cryptocurrency/exception"
	"github.com/mezonai/cryptocurrency/logx"
)

const (
	defaultSinkQueueSize = 1024
	sinkSendTimeout      = 5 * time.Second
)

// Sink ships events out of the process.
type Sink interface {
	Name() string
	Send(ctx context.Context, event LedgerEvent) error
	Close() error
}

// EventRouter delivers every event to the bus synchronously and to the sink from a
// background worker, so a slow broker never holds up the executor.
type EventRouter struct {
	eventBus *EventBus
	sink     Sink

	queue    chan LedgerEvent
	stopOnce sync.Once
	done     chan struct{}
}

// NewEventRouter creates a router. sink may be nil.
func NewEventRouter(eventBus *EventBus, sink Sink) *EventRouter {
	er := &EventRouter{
		eventBus: eventBus,
		sink:     sink,
		done:     make(chan struct{}),
	}
	if sink != nil {
		er.queue = make(chan LedgerEvent, defaultSinkQueueSize)
		exception.SafeGo("EventSinkWorker", er.drain)
	} else {
		close(er.done)
	}
	return er
}

func (er *EventRouter) Publish(event LedgerEvent) {
	if er == nil {
		return
	}
	if er.eventBus != nil {
		er.eventBus.Publish(event)
	}
	if er.queue == nil {
		return
	}
	select {
	case er.queue <- event:
	default:
		logx.Warn("EVENT_ROUTER", fmt.Sprintf("Sink queue full, dropping event | sink=%s | op_hash=%s", er.sink.Name(), event.OpHash()))
	}
}

func (er *EventRouter) EventBus() *EventBus {
	return er.eventBus
}

func (er *EventRouter) drain() {
	defer close(er.done)
	for event := range er.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sinkSendTimeout)
		if err := er.sink.Send(ctx, event); err != nil {
			logx.Error("EVENT_ROUTER", fmt.Sprintf("Failed to ship event | sink=%s | op_hash=%s | err=%v", er.sink.Name(), event.OpHash(), err))
		}
		cancel()
	}
}

// Close flushes queued events to the sink and closes it. Publish must not be called afterwards.
func (er *EventRouter) Close() error {
	var err error
	er.stopOnce.Do(func() {
		if er.queue == nil {
			return
		}
		close(er.queue)
		<-er.done
		err = er.sink.Close()
	})
	return err
}
