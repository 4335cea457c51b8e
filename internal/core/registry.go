package core

import (
	"net"
	"sync"
)

const noIndex = -1

type entry struct {
	client     *Client
	prev, next int
}

// Registry is the ordered set of logged-in clients, most recently joined first.
//
// Entries live in a dense arena linked by index, so removal never frees memory
// another goroutine may still be walking. A single mutex guards the arena and
// the order links; every read, mutation and broadcast walk happens under it.
type Registry struct {
	mu    sync.Mutex
	arena []entry
	free  []int
	head  int
	tail  int
	size  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{head: noIndex, tail: noIndex}
}

// InsertFront adds c at the head. When before is non-nil it runs under the
// registry lock with the current roster in tail-to-head order, and an error it
// returns aborts the insert.
func (r *Registry) InsertFront(c *Client, before func(roster []*Client) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c) != noIndex {
		return ErrAlreadyRegistered
	}

	if before != nil {
		if err := before(r.reverseLocked()); err != nil {
			return err
		}
	}

	idx := r.alloc(c)
	r.arena[idx].next = r.head
	if r.head != noIndex {
		r.arena[r.head].prev = idx
	}
	r.head = idx
	if r.tail == noIndex {
		r.tail = idx
	}
	r.size++
	return nil
}

// Remove unlinks c. It reports false when c was not registered.
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(c)
	if idx == noIndex {
		return false
	}
	r.unlink(idx)
	return true
}

// FindByConn returns the client owning conn, or nil.
func (r *Registry) FindByConn(conn net.Conn) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := r.head; i != noIndex; i = r.arena[i].next {
		if r.arena[i].client.Conn == conn {
			return r.arena[i].client
		}
	}
	return nil
}

// Range calls fn for each client head to tail while holding the lock.
// Iteration stops when fn returns false.
func (r *Registry) Range(fn func(c *Client) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := r.head; i != noIndex; i = r.arena[i].next {
		if !fn(r.arena[i].client) {
			return
		}
	}
}

// Snapshot returns the clients head to tail.
func (r *Registry) Snapshot() []*Client {
	out := make([]*Client, 0, r.Len())
	r.Range(func(c *Client) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Drain removes every client and returns them head to tail.
func (r *Registry) Drain() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Client, 0, r.size)
	for i := r.head; i != noIndex; i = r.arena[i].next {
		out = append(out, r.arena[i].client)
	}
	r.arena = r.arena[:0]
	r.free = r.free[:0]
	r.head, r.tail, r.size = noIndex, noIndex, 0
	return out
}

func (r *Registry) indexOf(c *Client) int {
	for i := r.head; i != noIndex; i = r.arena[i].next {
		if r.arena[i].client == c {
			return i
		}
	}
	return noIndex
}

func (r *Registry) reverseLocked() []*Client {
	out := make([]*Client, 0, r.size)
	for i := r.tail; i != noIndex; i = r.arena[i].prev {
		out = append(out, r.arena[i].client)
	}
	return out
}

func (r *Registry) alloc(c *Client) int {
	e := entry{client: c, prev: noIndex, next: noIndex}
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		r.arena[idx] = e
		return idx
	}
	r.arena = append(r.arena, e)
	return len(r.arena) - 1
}

func (r *Registry) unlink(idx int) {
	e := r.arena[idx]
	if e.prev != noIndex {
		r.arena[e.prev].next = e.next
	} else {
		r.head = e.next
	}
	if e.next != noIndex {
		r.arena[e.next].prev = e.prev
	} else {
		r.tail = e.prev
	}
	r.arena[idx] = entry{prev: noIndex, next: noIndex}
	r.free = append(r.free, idx)
	r.size--
}
