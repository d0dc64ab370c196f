package service

import (
	"context"
	"fmt"
	"sync"

	"flowcore/internal/api/models"
	"flowcore/internal/editor"

	"gorm.io/gorm"
)

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

type fakeEndpointStore struct {
	rows   map[uint]models.Endpoint
	nextID uint
}

func newFakeEndpointStore() *fakeEndpointStore {
	return &fakeEndpointStore{rows: make(map[uint]models.Endpoint)}
}

func (f *fakeEndpointStore) FindAll() ([]models.Endpoint, error) {
	out := make([]models.Endpoint, 0, len(f.rows))
	for id := uint(1); id <= f.nextID; id++ {
		if e, ok := f.rows[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEndpointStore) FindByID(id uint) (models.Endpoint, error) {
	e, ok := f.rows[id]
	if !ok {
		return models.Endpoint{}, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeEndpointStore) FindByRoute(method models.HTTPMethod, path string) (models.Endpoint, error) {
	for _, e := range f.rows {
		if e.Method == method && e.Path == path {
			return e, nil
		}
	}
	return models.Endpoint{}, gorm.ErrRecordNotFound
}

func (f *fakeEndpointStore) Create(e *models.Endpoint) error {
	f.nextID++
	e.ID = f.nextID
	f.rows[e.ID] = *e
	return nil
}

func (f *fakeEndpointStore) Patch(id uint, patch map[string]any) error {
	e, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range patch {
		switch k {
		case "name":
			e.Name = v.(string)
		case "method":
			e.Method = models.HTTPMethod(v.(string))
		case "path":
			e.Path = v.(string)
		}
	}
	f.rows[id] = e
	return nil
}

func (f *fakeEndpointStore) SaveFlow(id uint, flow models.Flow) error {
	e, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Flow = flow
	f.rows[id] = e
	return nil
}

func (f *fakeEndpointStore) Delete(id uint) error {
	if _, ok := f.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, id)
	return nil
}

// fakeFlowStore is safe for the debounce timer goroutine.
type fakeFlowStore struct {
	mu      sync.Mutex
	flows   map[uint]models.Flow
	saves   int
	loadErr error
	saveErr error
}

func newFakeFlowStore() *fakeFlowStore {
	return &fakeFlowStore{flows: make(map[uint]models.Flow)}
}

func (f *fakeFlowStore) LoadFlow(id uint) (models.Flow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return models.Flow{}, f.loadErr
	}
	flow, ok := f.flows[id]
	if !ok {
		return models.Flow{}, ErrEndpointNotFound
	}
	return flow.Clone(), nil
}

func (f *fakeFlowStore) SaveFlow(id uint, flow models.Flow) (editor.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return editor.Report{}, f.saveErr
	}
	f.flows[id] = flow
	f.saves++
	return editor.Audit(flow), nil
}

func (f *fakeFlowStore) saved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *fakeFlowStore) flow(id uint) models.Flow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flows[id]
}

type fakeDrafts struct {
	mu     sync.Mutex
	drafts map[uint]models.Flow
	writes int
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{drafts: make(map[uint]models.Flow)}
}

func (f *fakeDrafts) SaveDraft(_ context.Context, id uint, flow models.Flow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts[id] = flow
	f.writes++
	return nil
}

func (f *fakeDrafts) LoadDraft(_ context.Context, id uint) (models.Flow, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	flow, ok := f.drafts[id]
	return flow, ok, nil
}

func (f *fakeDrafts) DiscardDraft(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.drafts, id)
	return nil
}

func (f *fakeDrafts) has(id uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.drafts[id]
	return ok
}

type published struct {
	endpointID uint
	nodes      int
	clean      bool
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) PublishFlowSaved(id uint, flow models.Flow, report editor.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{endpointID: id, nodes: len(flow.Nodes), clean: report.Clean()})
	return nil
}

func (f *fakePublisher) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.events...)
}

type fakeUserStore struct {
	users  map[uint]models.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]models.User)}
}

func (f *fakeUserStore) FindByEmail(email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByID(id uint) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Create(user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserStore) SetRefreshToken(id uint, token string) error {
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.RefreshToken = token
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) ExistsByEmail(email string) (bool, error) {
	_, err := f.FindByEmail(email)
	return err == nil, nil
}
