package lease

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecommanager/backend/internal/domain/channel"
)

// InMemoryLeaseManager implements channel.LeaseManager for single-process
// deployments and tests. Expired leases are reclaimed on the next Acquire.
type InMemoryLeaseManager struct {
	mu     sync.Mutex
	leases map[uuid.UUID]time.Time
}

// NewInMemoryLeaseManager creates an in-memory lease manager
func NewInMemoryLeaseManager() *InMemoryLeaseManager {
	return &InMemoryLeaseManager{
		leases: make(map[uuid.UUID]time.Time),
	}
}

// Acquire takes the lease for one channel
func (m *InMemoryLeaseManager) Acquire(_ context.Context, channelID uuid.UUID, ttl time.Duration) (channel.Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, held := m.leases[channelID]; held && time.Now().Before(expiry) {
		return nil, channel.ErrLeaseHeld
	}
	m.leases[channelID] = time.Now().Add(ttl)
	return &inMemoryLease{manager: m, channelID: channelID}, nil
}

type inMemoryLease struct {
	manager   *InMemoryLeaseManager
	channelID uuid.UUID
	released  bool
	mu        sync.Mutex
}

// Release releases the lease. Repeated calls are no-ops.
func (l *inMemoryLease) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return nil
	}
	l.released = true

	l.manager.mu.Lock()
	defer l.manager.mu.Unlock()
	delete(l.manager.leases, l.channelID)
	return nil
}

// Ensure InMemoryLeaseManager implements channel.LeaseManager
var _ channel.LeaseManager = (*InMemoryLeaseManager)(nil)
