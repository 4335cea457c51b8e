package core

import (
	"context"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/proto"
)

// Handler reacts to readiness events on a worker's watched sockets.
type Handler interface {
	// HandleFrame processes one inbound frame. Returning false stops watching conn.
	HandleFrame(conn net.Conn, payload []byte) bool
	// HandleHangup runs when reading from conn failed or reached EOF.
	HandleHangup(conn net.Conn, err error)
}

type slotState uint8

const (
	slotVacant slotState = iota
	slotClaimed
	slotWatched
	slotControl
)

type slot struct {
	state slotState
	conn  net.Conn
}

// controlSlot is reserved for the control channel and never holds a client.
const controlSlot = 0

// Worker watches a bounded set of sockets from a single event loop.
//
// mu guards slots and load. Slot membership only changes inside the loop
// (via the control channel) or, for claims that never reached the loop,
// through claim/release.
type Worker struct {
	index        int
	capacity     int
	maxFrameSize int
	handler      Handler
	log          zerolog.Logger

	mu    sync.Mutex
	slots []slot
	load  int

	control chan Command
	ready   chan Event
	done    chan struct{}
}

func newWorker(index, capacity, maxFrameSize int, handler Handler, logger *zerolog.Logger) *Worker {
	slots := make([]slot, capacity+1)
	slots[controlSlot] = slot{state: slotControl}
	return &Worker{
		index:        index,
		capacity:     capacity,
		maxFrameSize: maxFrameSize,
		handler:      handler,
		log:          logger.With().Str("component", "worker").Int("worker", index).Logger(),
		slots:        slots,
		control:      make(chan Command, capacity+1),
		ready:        make(chan Event, capacity+1),
		done:         make(chan struct{}),
	}
}

// Index returns the worker's position in the pool.
func (w *Worker) Index() int {
	return w.index
}

// Capacity returns the number of client slots.
func (w *Worker) Capacity() int {
	return w.capacity
}

// Load returns the number of non-vacant client slots.
func (w *Worker) Load() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load
}

// claim reserves a vacant slot and counts it in the load. It returns noIndex
// when the worker is full.
func (w *Worker) claim() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.load >= w.capacity {
		return noIndex
	}
	for i := range w.slots {
		if w.slots[i].state == slotVacant {
			w.slots[i].state = slotClaimed
			w.load++
			return i
		}
	}
	return noIndex
}

// Release gives back a claimed slot that was never watched.
func (w *Worker) Release(idx int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.slots[idx].state != slotClaimed {
		return
	}
	w.slots[idx] = slot{}
	w.load--
}

// Watch hands conn to the worker loop for the claimed slot idx. Ownership of
// conn passes to the worker once the ADD record is consumed.
func (w *Worker) Watch(idx int, conn net.Conn) {
	w.control <- Command{Kind: CommandAdd, Slot: idx, Conn: conn}
}

// Run is the worker's readiness loop. It returns when ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	w.log.Debug().Int("capacity", w.capacity).Msg("worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Debug().Msg("worker stopped")
			return
		case cmd := <-w.control:
			w.apply(cmd)
		case ev := <-w.ready:
			w.handle(ev)
		}
	}
}

func (w *Worker) apply(cmd Command) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cmd.Slot <= controlSlot || cmd.Slot >= len(w.slots) {
		w.log.Warn().Int("slot", cmd.Slot).Stringer("op", cmd.Kind).Msg("control record for invalid slot")
		return
	}

	s := &w.slots[cmd.Slot]
	switch cmd.Kind {
	case CommandAdd:
		if s.state != slotClaimed {
			w.log.Warn().Int("slot", cmd.Slot).Msg("add to unclaimed slot")
			return
		}
		s.state = slotWatched
		s.conn = cmd.Conn
		go w.watch(cmd.Slot, cmd.Conn)
	case CommandRemove:
		if s.state != slotWatched || s.conn != cmd.Conn {
			return
		}
		*s = slot{}
		w.load--
	}
}

// handle dispatches a readiness event, ignoring events from sockets that no
// longer occupy their slot.
func (w *Worker) handle(ev Event) {
	if !w.watching(ev.Slot, ev.Conn) {
		return
	}

	remove := Command{Kind: CommandRemove, Slot: ev.Slot, Conn: ev.Conn}
	switch ev.Kind {
	case EventHangup:
		w.handler.HandleHangup(ev.Conn, ev.Err)
		w.apply(remove)
	case EventFrame:
		if !w.handler.HandleFrame(ev.Conn, ev.Payload) {
			w.apply(remove)
		}
	}
}

func (w *Worker) watching(idx int, conn net.Conn) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.slots[idx]
	return s.state == slotWatched && s.conn == conn
}

// watch reads frames from conn and forwards them to the loop until the first
// read error.
func (w *Worker) watch(idx int, conn net.Conn) {
	for {
		payload, err := proto.ReadFrameLimit(conn, w.maxFrameSize)
		ev := Event{Kind: EventFrame, Slot: idx, Conn: conn, Payload: payload}
		if err != nil {
			ev = Event{Kind: EventHangup, Slot: idx, Conn: conn, Err: err}
		}

		select {
		case w.ready <- ev:
		case <-w.done:
			return
		}
		if err != nil {
			return
		}
	}
}
