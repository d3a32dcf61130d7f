package service

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const subscriberBuffer = 32

// LiveFeed broadcasts order updates to connected admin consoles. A subscriber
// that falls behind by more than its buffer is dropped.
type LiveFeed struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	logger *zap.Logger
}

func NewLiveFeed(logger *zap.Logger) *LiveFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveFeed{subs: map[chan []byte]struct{}{}, logger: logger}
}

// Subscribe returns a channel of JSON encoded updates and a cancel func. The
// channel is closed on cancel or when the subscriber is dropped.
func (f *LiveFeed) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { f.remove(ch) })
	}
}

func (f *LiveFeed) remove(ch chan []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[ch]; ok {
		delete(f.subs, ch)
		close(ch)
	}
}

// Publish never blocks
func (f *LiveFeed) Publish(update OrderUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		f.logger.Warn("Live feed: failed to marshal update", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- data:
		default:
			delete(f.subs, ch)
			close(ch)
			f.logger.Warn("Live feed: dropped slow subscriber")
		}
	}
}

// Subscribers is the number of connected consoles
func (f *LiveFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
