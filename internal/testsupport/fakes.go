package testsupport

import (
	"context"
	"fmt"
	"os"
	"sync"

	"chanvault/internal/notifications"
	"chanvault/internal/source"
)

// FakeSource implements source.Client from in-memory fixtures.
type FakeSource struct {
	mu sync.Mutex

	Handles  map[int64]*source.Handle
	Messages map[int64][]source.Message
	Payloads map[int64][]byte

	ResolveErr  map[int64]error
	ListErr     map[int64]error
	DownloadErr map[int64]error

	// ResolveHints records the username hint of the last ResolveChannel call
	// per channel.
	ResolveHints map[int64]string

	ListCalls     int
	DownloadCalls int
}

// NewFakeSource returns an empty fake ready for fixtures.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		Handles:      make(map[int64]*source.Handle),
		Messages:     make(map[int64][]source.Message),
		Payloads:     make(map[int64][]byte),
		ResolveErr:   make(map[int64]error),
		ListErr:      make(map[int64]error),
		DownloadErr:  make(map[int64]error),
		ResolveHints: make(map[int64]string),
	}
}

// AddChannel registers a resolvable channel on the fake.
func (f *FakeSource) AddChannel(id int64, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Handles[id] = &source.Handle{ID: id, AccessHash: id * 1000, Title: title}
}

// AddMessage appends a message with the given attachment and payload.
func (f *FakeSource) AddMessage(channelID int64, msg source.Message, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages[channelID] = append(f.Messages[channelID], msg)
	f.Payloads[msg.ID] = payload
}

// SetChannelUsername gives a registered channel a public username, as a real
// resolution would learn it.
func (f *FakeSource) SetChannelUsername(id int64, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if handle, ok := f.Handles[id]; ok {
		handle.Username = username
	}
}

// SetDownloadErr sets or clears the download error for a message. Safe to
// call while a worker is running.
func (f *FakeSource) SetDownloadErr(messageID int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.DownloadErr, messageID)
		return
	}
	f.DownloadErr[messageID] = err
}

func (f *FakeSource) ResolveChannel(_ context.Context, id int64, username string) (*source.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResolveHints[id] = username
	if err := f.ResolveErr[id]; err != nil {
		return nil, err
	}
	handle, ok := f.Handles[id]
	if !ok {
		return nil, fmt.Errorf("fake source: unknown channel %d", id)
	}
	return handle, nil
}

func (f *FakeSource) ListMessages(_ context.Context, handle *source.Handle, afterID int64, limit int) ([]source.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if err := f.ListErr[handle.ID]; err != nil {
		return nil, err
	}
	var out []source.Message
	for _, msg := range f.Messages[handle.ID] {
		if msg.ID <= afterID {
			continue
		}
		out = append(out, msg)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *FakeSource) DownloadAttachment(_ context.Context, handle *source.Handle, messageID int64, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DownloadCalls++
	if err := f.DownloadErr[messageID]; err != nil {
		return err
	}
	payload, ok := f.Payloads[messageID]
	if !ok {
		return fmt.Errorf("fake source: no payload for message %d in channel %d", messageID, handle.ID)
	}
	return os.WriteFile(dest, payload, 0o644)
}

// MemoryObjectStore implements objectstore.Store in memory.
type MemoryObjectStore struct {
	mu sync.Mutex

	Buckets map[string]map[string][]byte

	UploadErr error
	StatErr   error
}

// NewMemoryObjectStore returns an empty in-memory object store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{Buckets: make(map[string]map[string][]byte)}
}

func (m *MemoryObjectStore) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Buckets[bucket]; !ok {
		m.Buckets[bucket] = make(map[string][]byte)
	}
	return nil
}

func (m *MemoryObjectStore) Upload(_ context.Context, bucket, object, filePath, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return 0, m.UploadErr
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, err
	}
	if _, ok := m.Buckets[bucket]; !ok {
		m.Buckets[bucket] = make(map[string][]byte)
	}
	m.Buckets[bucket][object] = data
	return int64(len(data)), nil
}

func (m *MemoryObjectStore) Exists(_ context.Context, bucket, object string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatErr != nil {
		return false, m.StatErr
	}
	objects, ok := m.Buckets[bucket]
	if !ok {
		return false, nil
	}
	_, ok = objects[object]
	return ok, nil
}

func (m *MemoryObjectStore) Remove(_ context.Context, bucket, object string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if objects, ok := m.Buckets[bucket]; ok {
		delete(objects, object)
	}
	return nil
}

// Object returns the stored payload, if present.
func (m *MemoryObjectStore) Object(bucket, object string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.Buckets[bucket]
	if !ok {
		return nil, false
	}
	data, ok := objects[object]
	return data, ok
}

// CaptureNotifier records notification events for assertions.
type CaptureNotifier struct {
	mu     sync.Mutex
	Events []notifications.Event
	Err    error
}

func (c *CaptureNotifier) FileArchived(_ context.Context, event notifications.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Events = append(c.Events, event)
	return nil
}

func (c *CaptureNotifier) Test(context.Context) error { return nil }

// Archived returns a copy of the captured events.
func (c *CaptureNotifier) Archived() []notifications.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notifications.Event, len(c.Events))
	copy(out, c.Events)
	return out
}
