// Package session holds the treated files that survive between the treatment
// and consolidation phases.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"bank-statement-consolidator/internal/models"
)

// Session is the set of successfully treated files of one treatment run.
// The treatment phase is the only writer; consolidation reads a snapshot.
type Session struct {
	mu        sync.RWMutex
	id        string
	startedAt time.Time
	files     []*models.TreatedFile
}

// New creates an empty session with a fresh ID
func New() *Session {
	return &Session{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		files:     make([]*models.TreatedFile, 0),
	}
}

// restore rebuilds a session read back from a workspace
func restore(id string, startedAt time.Time, files []*models.TreatedFile) *Session {
	return &Session{
		id:        id,
		startedAt: startedAt,
		files:     files,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// StartedAt returns when the current treatment run began
func (s *Session) StartedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

// Reset discards every treated file and starts a new run with a new ID
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	s.startedAt = time.Now()
	s.files = make([]*models.TreatedFile, 0)
}

// Add appends a treated file
func (s *Session) Add(file *models.TreatedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, file)
}

// Files returns a snapshot of the treated files in treatment order
func (s *Session) Files() []*models.TreatedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]*models.TreatedFile, len(s.files))
	copy(files, s.files)
	return files
}

// Len returns the number of treated files
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
