package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/dbx"
	"github.com/dmitrijs2005/blockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
	"github.com/dmitrijs2005/blockkeeper/internal/server/repositories/blocks"
	"github.com/dmitrijs2005/blockkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// memStore backs both fake repositories. It ignores the DBTX it is handed,
// so transactions are only observable through sqlmock expectations.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	links  map[string]map[string]struct{}
	blocks []*models.Block
	clock  time.Time

	errGetUser error
	errCreate  error
	errLink    error
	errUnlink  error
	errDelete  error
	errList    error
}

func newMemStore() *memStore {
	return &memStore{
		users: map[string]*models.User{},
		links: map[string]map[string]struct{}{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type fakeManager struct{ s *memStore }

func (f fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f fakeManager) Users(dbx.DBTX) users.Repository            { return fakeUsers{f.s} }
func (f fakeManager) Blocks(dbx.DBTX) blocks.Repository          { return fakeBlocks{f.s} }

type fakeUsers struct{ s *memStore }

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrUserExists
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = f.s.tick()
	f.s.users[c.ID] = &c
	f.s.links[c.ID] = map[string]struct{}{}
	out := c
	return &out, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errGetUser != nil {
		return nil, f.s.errGetUser
	}
	for _, u := range f.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errGetUser != nil {
		return nil, f.s.errGetUser
	}
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) BlockIDs(_ context.Context, userID string) ([]string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	ids := []string{}
	for id := range f.s.links[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f fakeUsers) LinkBlock(_ context.Context, userID, blockID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errLink != nil {
		return f.s.errLink
	}
	set, ok := f.s.links[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	set[blockID] = struct{}{}
	return nil
}

func (f fakeUsers) UnlinkBlocks(_ context.Context, userID string, blockIDs []string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errUnlink != nil {
		return 0, f.s.errUnlink
	}
	var n int64
	for _, id := range blockIDs {
		if _, ok := f.s.links[userID][id]; ok {
			delete(f.s.links[userID], id)
			n++
		}
	}
	return n, nil
}

type fakeBlocks struct{ s *memStore }

func (f fakeBlocks) Create(_ context.Context, b *models.Block) (*models.Block, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errCreate != nil {
		return nil, f.s.errCreate
	}
	c := *b
	c.ID = uuid.NewString()
	c.CreatedAt = f.s.tick()
	f.s.blocks = append(f.s.blocks, &c)
	out := c
	return &out, nil
}

func (f fakeBlocks) filter(ownerID string, keep func(*models.Block) bool) []*models.Block {
	out := []*models.Block{}
	for _, b := range f.s.blocks {
		if b.OwnerID == ownerID && keep(b) {
			c := *b
			out = append(out, &c)
		}
	}
	return out
}

func (f fakeBlocks) ListGroups(_ context.Context, ownerID string) ([]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errList != nil {
		return nil, f.s.errList
	}
	seen := map[int64]struct{}{}
	keys := []int64{}
	for _, b := range f.filter(ownerID, func(*models.Block) bool { return true }) {
		if _, ok := seen[b.GroupKey]; !ok {
			seen[b.GroupKey] = struct{}{}
			keys = append(keys, b.GroupKey)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })
	return keys, nil
}

func (f fakeBlocks) ListAll(_ context.Context, ownerID string) ([]*models.Block, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errList != nil {
		return nil, f.s.errList
	}
	out := f.filter(ownerID, func(*models.Block) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GroupKey != out[j].GroupKey {
			return out[i].GroupKey > out[j].GroupKey
		}
		return out[i].SeqNum < out[j].SeqNum
	})
	return out, nil
}

func (f fakeBlocks) ListByLabel(_ context.Context, ownerID, label string) ([]*models.Block, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errList != nil {
		return nil, f.s.errList
	}
	return f.filter(ownerID, func(b *models.Block) bool { return b.Label == label }), nil
}

func (f fakeBlocks) ListByGroup(_ context.Context, ownerID string, groupKey int64) ([]*models.Block, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errList != nil {
		return nil, f.s.errList
	}
	out := f.filter(ownerID, func(b *models.Block) bool { return b.GroupKey == groupKey })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SeqNum < out[j].SeqNum })
	return out, nil
}

func (f fakeBlocks) IDs(_ context.Context, ownerID string) ([]string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	ids := []string{}
	for _, b := range f.filter(ownerID, func(*models.Block) bool { return true }) {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func (f fakeBlocks) IDsByGroup(_ context.Context, ownerID string, groupKey int64) ([]string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	ids := []string{}
	for _, b := range f.filter(ownerID, func(b *models.Block) bool { return b.GroupKey == groupKey }) {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func (f fakeBlocks) DeleteByIDs(_ context.Context, ownerID string, ids []string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.errDelete != nil {
		return 0, f.s.errDelete
	}
	drop := map[string]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var n int64
	kept := f.s.blocks[:0]
	for _, b := range f.s.blocks {
		if _, ok := drop[b.ID]; ok && b.OwnerID == ownerID {
			n++
			continue
		}
		kept = append(kept, b)
	}
	f.s.blocks = kept
	return n, nil
}

// --- helpers ---

type fixture struct {
	store    *memStore
	mock     sqlmock.Sqlmock
	tokens   *auth.TokenService
	accounts *AccountService
	blocks   *BlockService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := newMemStore()
	rm := fakeManager{store}
	tokens := auth.NewTokenService([]byte("k"), time.Hour)
	accounts := NewAccountService(db, rm, tokens, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewExternalVerifier("broker"), nil)

	return &fixture{
		store:    store,
		mock:     mock,
		tokens:   tokens,
		accounts: accounts,
		blocks:   NewBlockService(db, rm, accounts, nil),
	}
}

func (f *fixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func (f *fixture) expectRollback() {
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
}

func (f *fixture) register(t *testing.T, email string) auth.Identity {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), email, "secret123")
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return auth.Authenticated(u.ID)
}
