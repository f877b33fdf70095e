package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/events"
	"github.com/sfqs/ticket-system/internal/repository"
)

type fakeUsers struct {
	mu          sync.Mutex
	byID        map[string]*domain.User
	seq         int
	getErr      error
	updateExp   int
	updateExErr error
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*domain.User{}}
	for _, u := range users {
		_ = f.Create(context.Background(), u)
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", f.seq)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) ListByStatus(_ context.Context, status domain.UserStatus, _, _ int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.byID {
		if u.Status == status {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) ListEngineersByExperience(_ context.Context, _ int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.byID {
		if u.Role == domain.RoleEngineer && u.Status == domain.UserStatusActive {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Experience > out[j].Experience })
	return out, nil
}

func (f *fakeUsers) ListEngineersAfter(_ context.Context, afterID string, limit int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.byID {
		if u.Role == domain.RoleEngineer && u.Status == domain.UserStatusActive && u.ID > afterID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) UpdateExperience(_ context.Context, exp domain.EngineerExperience) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateExErr != nil {
		return f.updateExErr
	}
	for _, u := range f.byID {
		if u.Email == exp.Email {
			u.Experience = exp.Experience
			u.Level = exp.Level
			u.TicketsSolved = exp.TicketsSolved
			f.updateExp++
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUsers) byEmail(email string) *domain.User {
	u, _ := f.GetByEmail(context.Background(), email)
	return u
}

type fakeTickets struct {
	mu          sync.Mutex
	byID        map[string]*domain.Ticket
	seq         int
	resolvedErr error
}

func newFakeTickets(tickets ...*domain.Ticket) *fakeTickets {
	f := &fakeTickets{byID: map[string]*domain.Ticket{}}
	for _, t := range tickets {
		_ = f.Create(context.Background(), t)
	}
	return f
}

func (f *fakeTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	}
	ticket.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	ticket.UpdatedAt = ticket.CreatedAt
	cp := *ticket
	f.byID[ticket.ID] = &cp
	return nil
}

func (f *fakeTickets) Update(_ context.Context, ticket *domain.Ticket, guard repository.TicketGuard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !guard.Holds(*stored) {
		return repository.ErrStaleWrite
	}
	cp := *ticket
	cp.ExtraMinutes = stored.ExtraMinutes
	ticket.ExtraMinutes = stored.ExtraMinutes
	f.byID[ticket.ID] = &cp
	return nil
}

func (f *fakeTickets) AddExtraMinutes(_ context.Context, id string, minutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.ExtraMinutes += minutes
	return nil
}

func (f *fakeTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTickets) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.byID {
		if filter.RequesterEmail != nil && t.RequesterEmail != *filter.RequesterEmail {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTickets) ListResolvedByEngineer(_ context.Context, email string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolvedErr != nil {
		return nil, f.resolvedErr
	}
	var out []domain.Ticket
	for _, t := range f.byID {
		if t.Status == domain.TicketStatusResolved && t.EngineerEmail != nil && *t.EngineerEmail == email {
			out = append(out, *t)
		}
	}
	return out, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeChangelog struct {
	entries []domain.ChangelogEntry
}

func (f *fakeChangelog) Create(_ context.Context, entry *domain.ChangelogEntry) error {
	entry.ID = fmt.Sprintf("entry-%d", len(f.entries)+1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeChangelog) List(_ context.Context, kind *domain.ChangelogKind, _, _ int) ([]domain.ChangelogEntry, error) {
	var out []domain.ChangelogEntry
	for _, e := range f.entries {
		if kind == nil || e.Kind == *kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeChangelog) Delete(_ context.Context, id string) error {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeExtraTime struct {
	byID map[string]*domain.ExtraTimeRequest
	seq  int
}

func newFakeExtraTime() *fakeExtraTime {
	return &fakeExtraTime{byID: map[string]*domain.ExtraTimeRequest{}}
}

func (f *fakeExtraTime) Create(_ context.Context, request *domain.ExtraTimeRequest) error {
	f.seq++
	request.ID = fmt.Sprintf("extra-%d", f.seq)
	request.CreatedAt = time.Now()
	cp := *request
	f.byID[request.ID] = &cp
	return nil
}

func (f *fakeExtraTime) Update(_ context.Context, request *domain.ExtraTimeRequest, from domain.ExtraTimeStatus) error {
	stored, ok := f.byID[request.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != from {
		return repository.ErrStaleWrite
	}
	cp := *request
	f.byID[request.ID] = &cp
	return nil
}

func (f *fakeExtraTime) GetByID(_ context.Context, id string) (*domain.ExtraTimeRequest, error) {
	if r, ok := f.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeExtraTime) List(_ context.Context, filter repository.ExtraTimeFilter) ([]domain.ExtraTimeRequest, error) {
	var out []domain.ExtraTimeRequest
	for _, r := range f.byID {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.TicketID != nil && r.TicketID != *filter.TicketID {
			continue
		}
		if filter.EngineerEmail != nil && r.EngineerEmail != *filter.EngineerEmail {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

type fakeSessions struct {
	revoked map[string]time.Duration
}

func (f *fakeSessions) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[id] = ttl
	return nil
}

func (f *fakeSessions) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := f.revoked[id]
	return ok, nil
}

type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) SubscribeAll(events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

func engineerSession(email string) domain.Session {
	return domain.Session{ID: "s-" + email, Authenticated: true, Role: domain.RoleEngineer, Email: email, Name: email, ExpiresAt: time.Now().Add(time.Hour)}
}

func sessionFor(role domain.Role, email string) domain.Session {
	return domain.Session{ID: "s-" + email, Authenticated: true, Role: role, Email: email, Name: email, ExpiresAt: time.Now().Add(time.Hour)}
}

func resolvedTicket(engineer string, priority domain.TicketPriority) *domain.Ticket {
	e := engineer
	return &domain.Ticket{
		Fixture:        "FX-1",
		Description:    "broken",
		Priority:       priority,
		Status:         domain.TicketStatusResolved,
		RequesterEmail: "sup@sfqs.local",
		EngineerEmail:  &e,
	}
}
