package agent

import "sync"

// chatLocks serializes turns per chat id. Entries are dropped once no turn
// holds or waits for them.
type chatLocks struct {
	mu    sync.Mutex
	chats map[string]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until chatID is free and returns the matching unlock.
func (l *chatLocks) lock(chatID string) (unlock func()) {
	l.mu.Lock()
	if l.chats == nil {
		l.chats = make(map[string]*chatLock)
	}
	c, ok := l.chats[chatID]
	if !ok {
		c = &chatLock{}
		l.chats[chatID] = c
	}
	c.refs++
	l.mu.Unlock()

	c.mu.Lock()
	return func() {
		c.mu.Unlock()
		l.mu.Lock()
		c.refs--
		if c.refs == 0 {
			delete(l.chats, chatID)
		}
		l.mu.Unlock()
	}
}

func (l *chatLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.chats)
}
