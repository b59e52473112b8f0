package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/imaginify/imaginify/internal/cache"
	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/payment"
	"github.com/imaginify/imaginify/internal/repository"
)

// memStore is an in-memory UserStore, ImageStore and TransactionStore.
type memStore struct {
	mu     sync.Mutex
	seq    int
	clock  time.Time
	users  map[string]*model.User
	images map[string]*model.Image
	txs    map[string]*model.Transaction

	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:  make(map[string]*model.User),
		images: make(map[string]*model.Image),
		txs:    make(map[string]*model.Transaction),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%04d", prefix, m.seq)
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, u := range m.users {
		if u.ClerkID == user.ClerkID || u.Email == user.Email {
			return repository.ErrUserExists
		}
	}
	if user.ID == "" {
		user.ID = m.nextID("usr")
	}
	user.CreatedAt = m.tick()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) findByClerkID(clerkID string) *model.User {
	for _, u := range m.users {
		if u.ClerkID == clerkID {
			return u
		}
	}
	return nil
}

func (m *memStore) GetUserByClerkID(_ context.Context, clerkID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.findByClerkID(clerkID)
	if u == nil {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateUserProfile(_ context.Context, clerkID string, p model.UserProfile) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.findByClerkID(clerkID)
	if u == nil {
		return nil, repository.ErrUserNotFound
	}
	u.FirstName, u.LastName, u.Username, u.Photo = p.FirstName, p.LastName, p.Username, p.Photo
	u.UpdatedAt = m.tick()
	cp := *u
	return &cp, nil
}

func (m *memStore) DeleteUserByClerkID(_ context.Context, clerkID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.findByClerkID(clerkID)
	if u == nil {
		return nil, repository.ErrUserNotFound
	}
	delete(m.users, u.ID)
	for _, img := range m.images {
		if img.AuthorID == u.ID {
			img.AuthorID = ""
			img.Author = nil
		}
	}
	return u, nil
}

func (m *memStore) IncrementCredits(_ context.Context, id string, delta int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.CreditBalance += delta
	cp := *u
	return &cp, nil
}

func (m *memStore) CreateImage(_ context.Context, img *model.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.users[img.AuthorID]; img.AuthorID != "" && !ok {
		return repository.ErrAuthorNotFound
	}
	if img.ID == "" {
		img.ID = m.nextID("img")
	}
	img.CreatedAt = m.tick()
	img.UpdatedAt = img.CreatedAt
	cp := *img
	cp.Author = nil
	m.images[img.ID] = &cp
	return nil
}

func (m *memStore) withAuthor(img *model.Image) *model.Image {
	cp := *img
	if u, ok := m.users[img.AuthorID]; ok {
		cp.Author = &model.Author{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, ClerkID: u.ClerkID}
	}
	return &cp
}

func (m *memStore) GetImageByID(_ context.Context, id string) (*model.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok {
		return nil, repository.ErrImageNotFound
	}
	return m.withAuthor(img), nil
}

func (m *memStore) UpdateImage(_ context.Context, img *model.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.images[img.ID]
	if !ok {
		return repository.ErrImageNotFound
	}
	img.UpdatedAt = m.tick()
	cp := *img
	cp.AuthorID = stored.AuthorID
	cp.Author = nil
	m.images[img.ID] = &cp
	return nil
}

func (m *memStore) DeleteImage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[id]; !ok {
		return repository.ErrImageNotFound
	}
	delete(m.images, id)
	return nil
}

func (m *memStore) ListImages(_ context.Context, filter repository.ImageFilter) ([]*model.Image, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, 0, m.failWith
	}

	var matched []*model.Image
	for _, img := range m.images {
		if filter.Search == "" || strings.Contains(strings.ToLower(img.Title), strings.ToLower(filter.Search)) {
			matched = append(matched, img)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}

	out := make([]*model.Image, 0, end-start)
	for _, img := range matched[start:end] {
		out = append(out, m.withAuthor(img))
	}
	return out, total, nil
}

func (m *memStore) CreateTransaction(_ context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.txs[tx.StripeID]; ok {
		return repository.ErrTransactionExists
	}
	if _, ok := m.users[tx.BuyerID]; !ok {
		return repository.ErrUserNotFound
	}
	if tx.ID == "" {
		tx.ID = m.nextID("txn")
	}
	cp := *tx
	m.txs[tx.StripeID] = &cp
	return nil
}

// memViews is an in-memory ViewCache with path generations.
type memViews struct {
	mu          sync.Mutex
	generations map[string]int
	entries     map[string][]byte
	invalidated []string
	failInvalid error
}

func newMemViews() *memViews {
	return &memViews{generations: make(map[string]int), entries: make(map[string][]byte)}
}

func (v *memViews) key(path, variant string) string {
	return fmt.Sprintf("%s:%d:%s", path, v.generations[path], variant)
}

func (v *memViews) InvalidatePath(_ context.Context, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.invalidated = append(v.invalidated, path)
	if v.failInvalid != nil {
		return v.failInvalid
	}
	v.generations[path]++
	return nil
}

func (v *memViews) GetView(_ context.Context, path, variant string, dst any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	data, ok := v.entries[v.key(path, variant)]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dst)
}

func (v *memViews) SetView(_ context.Context, path, variant string, val any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	v.entries[v.key(path, variant)] = data
	return nil
}

// fakeIdentity records metadata writes.
type fakeIdentity struct {
	calls []metadataCall
	err   error
}

type metadataCall struct {
	userID   string
	metadata map[string]any
}

func (f *fakeIdentity) UpdateUserMetadata(_ context.Context, userID string, md map[string]any) error {
	f.calls = append(f.calls, metadataCall{userID: userID, metadata: md})
	return f.err
}

// fakeGateway records checkout requests.
type fakeGateway struct {
	requests []payment.CheckoutRequest
	url      string
	err      error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

var errStoreDown = errors.New("store unavailable")
