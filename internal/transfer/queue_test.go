package transfer

import (
	"context"
	"testing"
	"time"
)

func TestQueueDeduplicates(t *testing.T) {
	q := NewQueue(4)
	if !q.TryEnqueue(1) {
		t.Fatal("first enqueue should succeed")
	}
	if q.TryEnqueue(1) {
		t.Fatal("duplicate enqueue should be rejected")
	}
	if q.Len() != 1 {
		t.Fatalf("len = %d", q.Len())
	}

	id, ok, err := q.Dequeue(context.Background(), time.Second)
	if err != nil || !ok || id != 1 {
		t.Fatalf("Dequeue = %d, %v, %v", id, ok, err)
	}

	// Still tracked until Done.
	if q.TryEnqueue(1) {
		t.Fatal("in-flight item must not re-enter the queue")
	}
	q.Done(1)
	if !q.TryEnqueue(1) {
		t.Fatal("released item should enqueue again")
	}
}

func TestQueueCapacity(t *testing.T) {
	q := NewQueue(1)
	if !q.TryEnqueue(1) {
		t.Fatal("enqueue into empty queue")
	}
	if q.TryEnqueue(2) {
		t.Fatal("full queue must reject")
	}
}

func TestQueueDequeueTimesOut(t *testing.T) {
	q := NewQueue(1)
	start := time.Now()
	_, ok, err := q.Dequeue(context.Background(), 20*time.Millisecond)
	if err != nil || ok {
		t.Fatalf("Dequeue = %v, %v", ok, err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("returned before timeout")
	}
}

func TestQueueReadmitsAfterDrain(t *testing.T) {
	q := NewQueue(1)
	if !q.TryEnqueue(1) {
		t.Fatal("enqueue into empty queue")
	}
	if q.TryEnqueue(2) {
		t.Fatal("full queue must reject")
	}

	id, ok, err := q.Dequeue(context.Background(), time.Second)
	if err != nil || !ok || id != 1 {
		t.Fatalf("Dequeue = %d, %v, %v", id, ok, err)
	}
	q.Done(1)
	if !q.TryEnqueue(2) {
		t.Fatal("drained queue should admit the rejected item")
	}
}
