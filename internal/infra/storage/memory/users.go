package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"staybook/internal/app/authz"
	domainnotification "staybook/internal/domain/notification"
	domainuser "staybook/internal/domain/user"
)

// UserRepository is an in-memory user store.
type UserRepository struct {
	mu    sync.RWMutex
	items map[domainuser.ID]*domainuser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[domainuser.ID]*domainuser.User)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role domainuser.Role) ([]*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainuser.User, 0)
	for _, u := range r.items {
		if u.Role == role {
			matches = append(matches, u)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[u.ID] = u
	return nil
}

// NotificationRepository is an in-memory notification store.
type NotificationRepository struct {
	mu    sync.RWMutex
	items map[domainnotification.ID]*domainnotification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[domainnotification.ID]*domainnotification.Notification)}
}

func (r *NotificationRepository) ByID(ctx context.Context, id domainnotification.ID) (*domainnotification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.items[id]
	if !ok {
		return nil, domainnotification.ErrNotFound
	}
	return n, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *domainnotification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = domainnotification.ID(uuid.NewString())
	}
	r.items[n.ID] = n
	return nil
}

func (r *NotificationRepository) CreateMany(ctx context.Context, batch []*domainnotification.Notification) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range batch {
		if n.ID == "" {
			n.ID = domainnotification.ID(uuid.NewString())
		}
		r.items[n.ID] = n
	}
	return len(batch), nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID domainuser.ID) ([]*domainnotification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainnotification.Notification, 0)
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			matches = append(matches, n)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *NotificationRepository) Save(ctx context.Context, n *domainnotification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[n.ID]; !ok {
		return domainnotification.ErrNotFound
	}
	r.items[n.ID] = n
	return nil
}

// TokenResolver maps static bearer tokens to users. It stands in for the
// real authentication layer in local runs and tests.
type TokenResolver struct {
	mu     sync.RWMutex
	tokens map[string]domainuser.ID
	users  *UserRepository
}

func NewTokenResolver(users *UserRepository) *TokenResolver {
	return &TokenResolver{tokens: make(map[string]domainuser.ID), users: users}
}

func (t *TokenResolver) Register(token string, id domainuser.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[token] = id
}

func (t *TokenResolver) Resolve(ctx context.Context, token string) (authz.Identity, error) {
	t.mu.RLock()
	id, ok := t.tokens[token]
	t.mu.RUnlock()
	if !ok {
		return authz.Identity{}, domainuser.ErrNotFound
	}
	u, err := t.users.ByID(ctx, id)
	if err != nil {
		return authz.Identity{}, err
	}
	return authz.Identity{ID: u.ID, Role: u.Role}, nil
}
