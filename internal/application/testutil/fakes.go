package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/orris-inc/leasebot/internal/domain/notification"
	"github.com/orris-inc/leasebot/internal/domain/rental"
)

// RecordingNotifier keeps every message it is asked to send.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
	Err  error
}

func (n *RecordingNotifier) Send(_ context.Context, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *RecordingNotifier) Sent() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Message, len(n.sent))
	copy(out, n.sent)
	return out
}

// To returns the messages delivered to chatID.
func (n *RecordingNotifier) To(chatID int64) []notification.Message {
	var out []notification.Message
	for _, m := range n.Sent() {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// FakeScheduler records the timer calls made by use cases.
type FakeScheduler struct {
	mu        sync.Mutex
	Scheduled map[uint]int64
	Removed   []uint
	Err       error
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{Scheduled: make(map[uint]int64)}
}

func (s *FakeScheduler) ScheduleRentalJobs(_ context.Context, r *rental.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Scheduled[r.ID()] = r.EndTime()
	return nil
}

func (s *FakeScheduler) RemoveRentalJobs(_ context.Context, rentalID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Scheduled, rentalID)
	s.Removed = append(s.Removed, rentalID)
	return nil
}

// FakeProvisioner stands in for the host account manager.
type FakeProvisioner struct {
	mu        sync.Mutex
	Accounts  map[string]string
	Revoked   []string
	CreateErr error
	DeleteErr error
	RevokeErr error
	// SessionOutput is what Sessions reports.
	SessionOutput string
	SessionErr    error
	counter       int
}

func NewFakeProvisioner() *FakeProvisioner {
	return &FakeProvisioner{Accounts: make(map[string]string)}
}

func (p *FakeProvisioner) CreateAccount(_ context.Context, username, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CreateErr != nil {
		return p.CreateErr
	}
	p.Accounts[username] = password
	return nil
}

func (p *FakeProvisioner) DeleteAccount(_ context.Context, username string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.DeleteErr != nil {
		return false, p.DeleteErr
	}
	_, ok := p.Accounts[username]
	delete(p.Accounts, username)
	return ok, nil
}

func (p *FakeProvisioner) ChangePassword(_ context.Context, username string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Accounts[username]; !ok {
		return "", fmt.Errorf("account %s does not exist", username)
	}
	p.counter++
	pw := fmt.Sprintf("rotated%04d", p.counter)
	p.Accounts[username] = pw
	return pw, nil
}

func (p *FakeProvisioner) Sessions(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.SessionOutput, p.SessionErr
}

func (p *FakeProvisioner) RevokeRemoteAccess(_ context.Context, username string) (bool, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.RevokeErr != nil {
		return false, "", p.RevokeErr
	}
	p.Revoked = append(p.Revoked, username)
	return true, "sessions terminated", nil
}
