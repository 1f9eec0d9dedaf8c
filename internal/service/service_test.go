package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

const testMemberHeader = "X-Test-Member"

// testAuthInterceptor trusts the member id sent in testMemberHeader. Requests
// without the header stay anonymous.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if memberID := req.Header().Get(testMemberHeader); memberID != "" {
				ctx = middleware.WithMemberID(ctx, memberID)
			}
			return next(ctx, req)
		}
	}
}

// as builds a request sent on behalf of memberID.
func as[T any](memberID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testMemberHeader, memberID)
	return req
}

// memoryStatsCache is an in-process cache.StatsCache that counts hits.
type memoryStatsCache struct {
	mu          sync.Mutex
	entries     map[string]map[string]ledger.Stats
	generations map[string]int64
	hits        int
	// beforeSet runs inside SetStats before the generation check.
	beforeSet func(groupID string)
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{
		entries:     make(map[string]map[string]ledger.Stats),
		generations: make(map[string]int64),
	}
}

func (c *memoryStatsCache) GetStats(_ context.Context, groupID, memberID string) (*ledger.Stats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.entries[groupID][memberID]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return &stats, true, nil
}

func (c *memoryStatsCache) Generation(_ context.Context, groupID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[groupID], nil
}

func (c *memoryStatsCache) SetStats(_ context.Context, groupID, memberID string, generation int64, stats ledger.Stats) (bool, error) {
	if c.beforeSet != nil {
		c.beforeSet(groupID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[groupID] != generation {
		return false, nil
	}
	if c.entries[groupID] == nil {
		c.entries[groupID] = make(map[string]ledger.Stats)
	}
	c.entries[groupID][memberID] = stats
	return true, nil
}

func (c *memoryStatsCache) Invalidate(_ context.Context, groupID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[groupID]++
	delete(c.entries, groupID)
	return nil
}

func (c *memoryStatsCache) hitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

func (p *recordingPublisher) last() events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type testEnv struct {
	store     *sqlite.SQLiteStore
	expenses  *api.ExpenseServiceClient
	groups    *api.GroupServiceClient
	incomes   *api.IncomeServiceClient
	cache     *memoryStatsCache
	publisher *recordingPublisher
}

// newTestEnv serves the group, expense and income services over httptest
// backed by a temp-file SQLite database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	env := &testEnv{
		store:     store,
		cache:     newMemoryStatsCache(),
		publisher: &recordingPublisher{},
	}

	interceptors := connect.WithInterceptors(testAuthInterceptor())
	mux := http.NewServeMux()
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, env.cache), interceptors))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store, env.cache, env.publisher), interceptors))
	mux.Handle(api.NewIncomeServiceHandler(NewIncomeService(store), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	env.groups = api.NewGroupServiceClient(http.DefaultClient, server.URL)
	env.expenses = api.NewExpenseServiceClient(http.DefaultClient, server.URL)
	env.incomes = api.NewIncomeServiceClient(http.DefaultClient, server.URL)
	return env
}

// createGroup creates a group owned by owner with the given members.
func (e *testEnv) createGroup(t *testing.T, owner string, members ...string) *models.Group {
	t.Helper()
	resp, err := e.groups.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{
		Name:    "Flat 3B",
		Members: members,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

// createExpense records an expense as caller and returns it.
func (e *testEnv) createExpense(t *testing.T, caller string, req *api.CreateExpenseRequest) *models.Expense {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), as(caller, req))
	require.NoError(t, err)
	return resp.Msg.Expense
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}
