package internal

import (
	"github.com/google/uuid"
)

// PendingQueue holds outgoing messages between submission and confirmed delivery.
// It is owned by a single thread session and is not safe for concurrent use.
type PendingQueue struct {
	entries []PendingMessage
}

// NewPendingQueue creates an empty queue
func NewPendingQueue() *PendingQueue {
	return &PendingQueue{}
}

// Submit appends text as a message in the sending state
func (q *PendingQueue) Submit(text string) PendingMessage {
	msg := PendingMessage{
		ID:       uuid.NewString(),
		Text:     text,
		Status:   PendingSending,
		Attempts: 1,
	}
	q.entries = append(q.entries, msg)
	return msg
}

// Resolve removes a delivered message. It reports whether id was queued.
func (q *PendingQueue) Resolve(id string) bool {
	for i, entry := range q.entries {
		if entry.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Fail marks a message as failed
func (q *PendingQueue) Fail(id string, err error) bool {
	for i := range q.entries {
		if q.entries[i].ID == id {
			q.entries[i].Status = PendingFailed
			q.entries[i].Err = err
			return true
		}
	}
	return false
}

// Retry moves every failed message back to sending and returns them
func (q *PendingQueue) Retry() []PendingMessage {
	var retried []PendingMessage
	for i := range q.entries {
		if q.entries[i].Status != PendingFailed {
			continue
		}
		q.entries[i].Status = PendingSending
		q.entries[i].Err = nil
		q.entries[i].Attempts++
		retried = append(retried, q.entries[i])
	}
	return retried
}

// Entries returns a copy of the queue in submission order
func (q *PendingQueue) Entries() []PendingMessage {
	return append([]PendingMessage(nil), q.entries...)
}

// Len returns the number of queued messages
func (q *PendingQueue) Len() int {
	return len(q.entries)
}

// Failed returns the number of messages in the failed state
func (q *PendingQueue) Failed() int {
	n := 0
	for _, entry := range q.entries {
		if entry.Status == PendingFailed {
			n++
		}
	}
	return n
}
