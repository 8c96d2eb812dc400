package ledger

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrDeviceBusy = errors.New("ledger: device already has an open session")

// Opener returns a raw handle for a device path
type Opener func(path string) (io.ReadWriteCloser, error)

// Manager hands out at most one session per device path
type Manager struct {
	mu       sync.Mutex
	opener   Opener
	sessions map[string]*Session
}

func NewManager(opener Opener) *Manager {
	if opener == nil {
		opener = OpenUSB
	}

	return &Manager{
		opener:   opener,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session on path. A second Open fails with ErrDeviceBusy
// until the first session is closed.
func (m *Manager) Open(path string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[path]; ok {
		return nil, errors.Wrapf(ErrDeviceBusy, "path %s", path)
	}

	device, err := m.opener(path)
	if err != nil {
		return nil, err
	}

	s := &Session{
		HID:     NewHID(device),
		path:    path,
		manager: m,
	}
	m.sessions[path] = s

	log.Debug().Str("path", path).Msg("Opened ledger session")

	return s, nil
}

// IsOpen reports whether path has an open session
func (m *Manager) IsOpen(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[path]
	return ok
}

func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessions[s.path] == s {
		delete(m.sessions, s.path)
	}
}

// Session is an exclusive HID transport on one device path
type Session struct {
	*HID
	path    string
	manager *Manager
	once    sync.Once
}

func (s *Session) Path() string {
	return s.path
}

// Close releases the device. Closing twice is a no-op.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		err = s.HID.Close()
		s.manager.release(s)
		log.Debug().Str("path", s.path).Msg("Closed ledger session")
	})

	return err
}
