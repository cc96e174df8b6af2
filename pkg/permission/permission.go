package permission

import (
	"context"
	"errors"
	"sync"

	"github.com/WoodJim/manage-calendar-events/internal/config"
)

// ErrDenied is returned by every façade operation invoked without both read
// and write calendar permissions. No store I/O happens once it is raised.
var ErrDenied = errors.New("calendar permission denied")

// Service is the host permission gate. HasPermissions reports whether both
// read and write calendar permissions are granted; Request initiates an
// asynchronous prompt and returns immediately.
type Service interface {
	HasPermissions(ctx context.Context) bool
	Request(ctx context.Context)
}

// StaticService reflects the grant state the adapter was configured with.
// Hosts without a runtime permission model configure both grants true.
type StaticService struct {
	read  bool
	write bool
}

func NewStaticService(cfg config.Permissions) *StaticService {
	return &StaticService{read: cfg.ReadGranted, write: cfg.WriteGranted}
}

func (s *StaticService) HasPermissions(ctx context.Context) bool {
	return s.read && s.write
}

// Request is a no-op for a static grant state; there is no prompt to show.
func (s *StaticService) Request(ctx context.Context) {}

// StubService is a test double counting prompt requests.
type StubService struct {
	mu       sync.Mutex
	Granted  bool
	Requests int
}

func (s *StubService) HasPermissions(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Granted
}

func (s *StubService) Request(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests++
}

// RequestCount returns how many prompts have been issued.
func (s *StubService) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Requests
}
