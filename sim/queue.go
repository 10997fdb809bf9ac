// Implements the WaitQueue, which holds all vehicles waiting for the bay.
// Vehicles are enqueued on arrival and served strictly in arrival order.

package sim

import (
	"fmt"
	"strings"
)

// WaitQueue represents the FIFO waiting line in front of the bay.
type WaitQueue struct {
	queue []*Entity
}

// Enqueue adds a vehicle to the back of the line.
func (wq *WaitQueue) Enqueue(e *Entity) {
	if e == nil {
		panic("Enqueue: entity must not be nil")
	}
	wq.queue = append(wq.queue, e)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range wq.queue {
		sb.WriteString(fmt.Sprint(val))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of vehicles in line.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Peek returns the vehicle at the front of the line without removing it.
// Returns nil if the line is empty.
func (wq *WaitQueue) Peek() *Entity {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0]
}

// Back returns the most recent arrival, or nil if the line is empty.
func (wq *WaitQueue) Back() *Entity {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[len(wq.queue)-1]
}

// Dequeue removes and returns the vehicle at the front of the line.
// Returns nil if the line is empty.
func (wq *WaitQueue) Dequeue() *Entity {
	if len(wq.queue) == 0 {
		return nil
	}
	front := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	return front
}
