package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Shared fakes
// ---------------------------------------------------------------------------

var nopLogger = zerolog.Nop()

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Notify(e domain.Event) {
	n.mu.Lock()
	n.events = append(n.events, e)
	n.mu.Unlock()
}

func (n *recordingNotifier) Events() []domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Event(nil), n.events...)
}

// memImageStore keeps images in a map; putErrAfter makes the Nth Put fail.
type memImageStore struct {
	mu          sync.Mutex
	seq         int
	objects     map[string][]byte
	puts        int
	putErrAfter int
	deleted     []string
}

func newMemImageStore() *memImageStore {
	return &memImageStore{objects: make(map[string][]byte)}
}

func (s *memImageStore) Put(_ context.Context, filename, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErrAfter > 0 && s.puts >= s.putErrAfter {
		return "", errors.New("store unavailable")
	}
	s.seq++
	ref := fmt.Sprintf("mem://%d/%s", s.seq, filename)
	s.objects[ref] = data
	return ref, nil
}

func (s *memImageStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, ref)
	s.deleted = append(s.deleted, ref)
	return nil
}

func (s *memImageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	seq     int
	byEmail map[string]*domain.User
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, domain.ErrDuplicateIdentity
	}
	r.seq++
	clone := *u
	clone.ID = fmt.Sprintf("user-%d", r.seq)
	r.byEmail[u.Email] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) List(_ context.Context, skip, limit int) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.User, 0, len(r.byEmail))
	for _, u := range r.byEmail {
		clone := *u
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, skip, limit), int64(len(all)), nil
}

// remove simulates an account deleted after a token was issued.
func (r *stubUserRepo) remove(email string) {
	r.mu.Lock()
	delete(r.byEmail, email)
	r.mu.Unlock()
}

func (r *stubUserRepo) setRole(email string, role domain.Role) {
	r.mu.Lock()
	r.byEmail[email].Role = role
	r.mu.Unlock()
}

type stubCategoryRepo struct {
	mu     sync.Mutex
	seq    int
	byName map[string]*domain.Category
	err    error
}

func newStubCategoryRepo(names ...string) *stubCategoryRepo {
	r := &stubCategoryRepo{byName: make(map[string]*domain.Category)}
	for _, n := range names {
		r.seq++
		r.byName[n] = &domain.Category{ID: fmt.Sprintf("cat-%d", r.seq), Name: n, IsActive: true}
	}
	return r
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.byName[c.Name]; ok {
		return nil, domain.ErrDuplicateCategory
	}
	r.seq++
	clone := *c
	clone.ID = fmt.Sprintf("cat-%d", r.seq)
	r.byName[c.Name] = &clone
	out := clone
	return &out, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.byName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, name string, u domain.CategoryUpdate, now time.Time) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.byName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := *c
	if u.Name != nil && *u.Name != name {
		if _, taken := r.byName[*u.Name]; taken {
			return nil, domain.ErrDuplicateCategory
		}
		next.Name = *u.Name
	}
	if u.Description != nil {
		next.Description = *u.Description
	}
	if u.IsActive != nil {
		next.IsActive = *u.IsActive
	}
	next.UpdatedAt = now
	delete(r.byName, name)
	r.byName[next.Name] = &next
	out := next
	return &out, nil
}

func (r *stubCategoryRepo) List(_ context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	var all []*domain.Category
	for _, c := range r.byName {
		if activeOnly && !c.IsActive {
			continue
		}
		clone := *c
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, skip, limit), int64(len(all)), nil
}

type stubProductRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*domain.Product
	// beforeUpdate runs inside UpdateUnlocked before the lock check, so a
	// test can interleave a concurrent Lock.
	beforeUpdate func(id string)
	createErr    error
	lastFilter   domain.ProductFilter
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *p
	clone.ID = fmt.Sprintf("prod-%d", r.seq)
	clone.Images = append([]string(nil), p.Images...)
	r.byID[clone.ID] = &clone
	return cloneProduct(&clone), nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *stubProductRepo) UpdateUnlocked(_ context.Context, id string, patch domain.ProductPatch, now time.Time) (*domain.Product, []string, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if p.IsLocked {
		return nil, nil, domain.ErrProductLocked
	}
	var replaced []string
	if patch.Images != nil {
		replaced = append([]string(nil), p.Images...)
	}
	r.byID[id] = patch.Apply(*p, now)
	return cloneProduct(r.byID[id]), replaced, nil
}

func (r *stubProductRepo) SetLocked(_ context.Context, id string, locked bool, now time.Time) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.IsLocked = locked
	p.UpdatedAt = now
	return cloneProduct(p), nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.byID, id)
	return p, nil
}

// List applies the same AND semantics as the Mongo filter.
func (r *stubProductRepo) List(_ context.Context, f domain.ProductFilter) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = f
	var matched []*domain.Product
	for _, p := range r.byID {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.UnlockedOnly && p.IsLocked {
			continue
		}
		matched = append(matched, cloneProduct(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, f.Skip, f.Limit), int64(len(matched)), nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	clone := *p
	clone.Images = append([]string(nil), p.Images...)
	return &clone
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return items[skip:end]
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	adminCaller = &domain.Identity{UserID: "user-admin", Email: "admin@pixelforge.test", Role: domain.RoleAdmin}
	userCaller  = &domain.Identity{UserID: "user-plain", Email: "user@pixelforge.test", Role: domain.RoleUser}
)

// pngBytes is a minimal PNG header, enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")

func pngUpload(name string) domain.ImageUpload {
	return domain.ImageUpload{Filename: name, Data: pngBytes}
}
