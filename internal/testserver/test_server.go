// Package testserver wires the full poller and query surface against an
// in-memory database and a fake product feed.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/domain/snapshot"
	"github.com/ganot/stocklog/internal/extract"
	"github.com/ganot/stocklog/internal/mcp"
	"github.com/ganot/stocklog/internal/poller"
	"github.com/ganot/stocklog/internal/source"
	"github.com/ganot/stocklog/internal/sqlite"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// Feed is a fake product feed serving GET /api/product/{item}.
type Feed struct {
	Server *httptest.Server

	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	hits   map[string]int
}

func newFeed() *Feed {
	f := &Feed{bodies: map[string]string{}, status: map[string]int{}, hits: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/product/{item}", f.serve)
	f.Server = httptest.NewServer(mux)
	return f
}

func (f *Feed) serve(w http.ResponseWriter, r *http.Request) {
	item := r.PathValue("item")

	f.mu.Lock()
	f.hits[item]++
	body, ok := f.bodies[item]
	code := f.status[item]
	f.mu.Unlock()

	if code != 0 {
		http.Error(w, http.StatusText(code), code)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// Set serves body for item with status 200.
func (f *Feed) Set(item, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[item] = body
	delete(f.status, item)
}

// Fail makes requests for item answer with code.
func (f *Feed) Fail(item string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[item] = code
}

// Hits returns how often item was requested.
func (f *Feed) Hits(item string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[item]
}

// URLTemplate returns the feed endpoint with the item placeholder.
func (f *Feed) URLTemplate() string {
	return f.Server.URL + "/api/product/" + source.ItemPlaceholder
}

type TestServer struct {
	DB        *sqlite.DB
	Feed      *Feed
	Driver    *poller.Driver
	Snapshots *snapshot.QueryService
	Activity  *activity.Service
	MCP       *sdkmcp.Server
}

// New wires everything for the given tracked items.
func New(t *testing.T, items ...string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	feed := newFeed()

	snapshotRepo := sqlite.NewSnapshotRepository(db)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	querySvc := snapshot.NewQueryService(snapshotRepo, nil)

	client := source.NewClient(source.Config{
		URLTemplate: feed.URLTemplate(),
		Timeout:     5 * time.Second,
		UserAgent:   "stocklog-test",
	}, feed.Server.Client(), nil)
	reconciler := snapshot.NewReconciler(snapshotRepo, snapshot.Config{}, nil)
	driver := poller.NewDriver(poller.Config{Items: items, Location: time.UTC},
		client, extract.New(extract.DefaultStripChars), reconciler, activitySvc, nil)

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{Snapshots: querySvc, Activity: activitySvc},
		Version:  "test",
	})

	t.Cleanup(func() {
		feed.Server.Close()
		_ = db.Close()
	})

	return &TestServer{
		DB:        db,
		Feed:      feed,
		Driver:    driver,
		Snapshots: querySvc,
		Activity:  activitySvc,
		MCP:       server,
	}
}

// Connect opens an MCP client session to the in-process server.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := ts.MCP.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Close()
	})
	return session
}
