package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// fakeTransport serves canned JSON and counts backend calls per path.
type fakeTransport struct {
	mu      sync.Mutex
	calls   map[string]int
	tokens  []string
	gate    chan struct{} // when set, reads block until it is closed
	fail    error
	payload func(req Request) interface{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		calls: make(map[string]int),
		payload: func(req Request) interface{} {
			if req.Method != http.MethodGet {
				return item{ID: 2, Title: "created"}
			}
			return []item{{ID: 1, Title: "Algebra"}}
		},
	}
}

func (f *fakeTransport) Do(ctx context.Context, token string, req Request, out interface{}) error {
	f.mu.Lock()
	f.calls[req.Method+" "+req.Path]++
	f.tokens = append(f.tokens, token)
	gate, fail := f.gate, f.fail
	f.mu.Unlock()

	if gate != nil && req.Method == http.MethodGet {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail != nil {
		return fail
	}
	data, _ := json.Marshal(f.payload(req))
	return json.Unmarshal(data, out)
}

func (f *fakeTransport) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeTransport) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

var (
	listAssignments = Query[int, []item]{
		Name: "assignments",
		Build: func(courseID int) Request {
			q := url.Values{}
			if courseID > 0 {
				q.Set("course_id", strconv.Itoa(courseID))
			}
			return Request{Method: http.MethodGet, Path: "/assignments/filter", Query: q}
		},
		Provides: []Tag{TagAssignments},
	}
	listCourses = Query[struct{}, []item]{
		Name:     "courses",
		Build:    func(struct{}) Request { return Request{Method: http.MethodGet, Path: "/courses/filter"} },
		Provides: []Tag{TagCourses},
	}
	createAssignment = Mutation[item, item]{
		Name: "createAssignment",
		Build: func(body item) Request {
			return Request{Method: http.MethodPost, Path: "/assignments/create", Body: body}
		},
		Invalidates: []Tag{TagAssignments},
	}
)

func TestRead_CachesFreshResults(t *testing.T) {
	tr := newFakeTransport()
	c := NewCache(tr, "tok", Options{})
	ctx := context.Background()

	res := Read(ctx, c, listAssignments, 3)
	require.True(t, res.IsSuccess())
	assert.Equal(t, []item{{ID: 1, Title: "Algebra"}}, res.Data)

	res = Read(ctx, c, listAssignments, 3)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, 1, tr.count("GET /assignments/filter"))

	// different params: different entry
	Read(ctx, c, listAssignments, 4)
	assert.Equal(t, 2, tr.count("GET /assignments/filter"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"tok", "tok"}, tr.tokens)
}

func TestRead_DeduplicatesConcurrentReads(t *testing.T) {
	tr := newFakeTransport()
	tr.gate = make(chan struct{})
	c := NewCache(tr, "tok", Options{})

	const readers = 10
	var wg sync.WaitGroup
	var ok int32
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := Read(context.Background(), c, listAssignments, 1); res.IsSuccess() && len(res.Data) == 1 {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	// let the readers pile up on the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(tr.gate)
	wg.Wait()

	assert.Equal(t, int32(readers), ok)
	assert.Equal(t, 1, tr.count("GET /assignments/filter"))
}

func TestMutate_InvalidatesProvidedTags(t *testing.T) {
	tr := newFakeTransport()
	c := NewCache(tr, "tok", Options{})
	ctx := context.Background()

	Read(ctx, c, listAssignments, 1)
	Read(ctx, c, listCourses, struct{}{})

	_, err := Mutate(ctx, c, createAssignment, item{Title: "Essay"})
	require.NoError(t, err)
	assert.Equal(t, 1, tr.count("POST /assignments/create"))

	Read(ctx, c, listAssignments, 1)
	Read(ctx, c, listCourses, struct{}{})
	assert.Equal(t, 2, tr.count("GET /assignments/filter"), "assignments are refetched")
	assert.Equal(t, 1, tr.count("GET /courses/filter"), "courses stay cached")
}

func TestMutate_FailureDoesNotInvalidate(t *testing.T) {
	tr := newFakeTransport()
	c := NewCache(tr, "tok", Options{})
	ctx := context.Background()

	Read(ctx, c, listAssignments, 1)
	tr.setFail(&Error{Status: http.StatusBadRequest, Message: "title is required"})
	_, err := Mutate(ctx, c, createAssignment, item{})
	require.Error(t, err)
	assert.Equal(t, "backend: 400 title is required", err.Error())

	tr.setFail(nil)
	Read(ctx, c, listAssignments, 1)
	assert.Equal(t, 1, tr.count("GET /assignments/filter"))
}

func TestRead_SkipWhen(t *testing.T) {
	tr := newFakeTransport()
	c := NewCache(tr, "", Options{})

	res := Read(context.Background(), c, listAssignments, 0, SkipWhen(true))
	assert.True(t, res.IsSkipped)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, 0, tr.count("GET /assignments/filter"))
	assert.Equal(t, 0, c.Len())

	// refetching a skipped read does nothing
	res = res.Refetch(context.Background())
	assert.True(t, res.IsSkipped)
	assert.Equal(t, 0, tr.count("GET /assignments/filter"))
}

func TestResult_ZeroValueIsNotSuccess(t *testing.T) {
	var res Result[[]item]
	assert.False(t, res.IsSuccess())
	assert.False(t, res.IsLoading)
	assert.False(t, res.IsError)
}

func TestRead_ErrorsAreRefetched(t *testing.T) {
	tr := newFakeTransport()
	tr.setFail(&Error{Status: http.StatusInternalServerError})
	c := NewCache(tr, "tok", Options{})
	ctx := context.Background()

	res := Read(ctx, c, listAssignments, 1)
	assert.True(t, res.IsError)
	assert.Equal(t, "backend: 500 Internal Server Error", res.Err.Error())

	tr.setFail(nil)
	res = Read(ctx, c, listAssignments, 1)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, 2, tr.count("GET /assignments/filter"))
}

func TestRead_Refetch(t *testing.T) {
	tr := newFakeTransport()
	c := NewCache(tr, "tok", Options{})
	ctx := context.Background()

	res := Read(ctx, c, listAssignments, 1)
	res = res.Refetch(ctx)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, 2, tr.count("GET /assignments/filter"))

	// the refetched value is cached again
	Read(ctx, c, listAssignments, 1)
	assert.Equal(t, 2, tr.count("GET /assignments/filter"))
}

func TestRead_LoadingWhenContextExpires(t *testing.T) {
	tr := newFakeTransport()
	tr.gate = make(chan struct{})
	c := NewCache(tr, "tok", Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := Read(ctx, c, listAssignments, 1)
	assert.True(t, res.IsLoading)

	peek := Peek(c, listAssignments, 1)
	assert.True(t, peek.IsLoading)

	// the detached fetch completes and fills the cache
	close(tr.gate)
	assert.Eventually(t, func() bool {
		return Peek(c, listAssignments, 1).IsSuccess()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, tr.count("GET /assignments/filter"))
}

func TestRead_InvalidatedWhileInFlightStaysStale(t *testing.T) {
	tr := newFakeTransport()
	tr.gate = make(chan struct{})
	c := NewCache(tr, "tok", Options{})

	done := make(chan Result[[]item])
	go func() { done <- Read(context.Background(), c, listAssignments, 1) }()
	time.Sleep(20 * time.Millisecond)

	c.Invalidate(TagAssignments)
	close(tr.gate)
	res := <-done
	assert.True(t, res.IsSuccess(), "the in-flight fetch still delivers its data")

	Read(context.Background(), c, listAssignments, 1)
	assert.Equal(t, 2, tr.count("GET /assignments/filter"))
}

func TestRead_AfterWriteDoesNotJoinEarlierFetch(t *testing.T) {
	tr := newFakeTransport()
	tr.gate = make(chan struct{})
	c := NewCache(tr, "tok", Options{})
	ctx := context.Background()

	before := make(chan Result[[]item])
	go func() { before <- Read(ctx, c, listAssignments, 1) }()
	time.Sleep(20 * time.Millisecond)

	_, err := Mutate(ctx, c, createAssignment, item{Title: "Essay"})
	require.NoError(t, err)

	after := make(chan Result[[]item])
	go func() { after <- Read(ctx, c, listAssignments, 1) }()
	time.Sleep(20 * time.Millisecond)
	close(tr.gate)

	assert.True(t, (<-before).IsSuccess())
	assert.True(t, (<-after).IsSuccess())
	assert.Equal(t, 2, tr.count("GET /assignments/filter"), "the read after the write starts its own fetch")

	// the post-write data is kept whichever fetch lands last
	Read(ctx, c, listAssignments, 1)
	assert.Equal(t, 2, tr.count("GET /assignments/filter"))
}

func TestPeek(t *testing.T) {
	tr := newFakeTransport()
	c := NewCache(tr, "tok", Options{})

	res := Peek(c, listAssignments, 1)
	assert.True(t, res.IsLoading)
	assert.Equal(t, 0, tr.count("GET /assignments/filter"))

	Read(context.Background(), c, listAssignments, 1)
	res = Peek(c, listAssignments, 1)
	assert.True(t, res.IsSuccess())
	assert.Len(t, res.Data, 1)
}

func TestCache_PrunesUnusedReads(t *testing.T) {
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tr := newFakeTransport()
	c := NewCache(tr, "tok", Options{KeepUnusedFor: time.Minute, Now: clock})
	ctx := context.Background()

	Read(ctx, c, listAssignments, 1)
	now = now.Add(30 * time.Second)
	Read(ctx, c, listCourses, struct{}{})
	now = now.Add(45 * time.Second) // assignments unused for 75s, courses for 45s

	Read(ctx, c, listCourses, struct{}{})
	assert.Equal(t, 1, c.Len())
	Read(ctx, c, listAssignments, 1)
	assert.Equal(t, 2, tr.count("GET /assignments/filter"))
	assert.Equal(t, 1, tr.count("GET /courses/filter"))
}

func TestRegistry(t *testing.T) {
	tr := newFakeTransport()
	reg := NewRegistry(tr, RegistryOptions{MaxSessions: 2})
	ctx := context.Background()

	alice := reg.For("alice-token")
	assert.Same(t, alice, reg.For("alice-token"))
	assert.Equal(t, "alice-token", alice.Token())

	bob := reg.For("bob-token")
	assert.NotSame(t, alice, bob)

	// data is never shared between sessions
	Read(ctx, alice, listAssignments, 1)
	Read(ctx, bob, listAssignments, 1)
	assert.Equal(t, 2, tr.count("GET /assignments/filter"))

	reg.Drop("alice-token")
	assert.NotSame(t, alice, reg.For("alice-token"))

	// anonymous plus two sessions exceeds MaxSessions
	reg.For("")
	assert.Equal(t, 2, reg.Len())
}

func TestMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	m := NewMetrics(promReg)
	tr := newFakeTransport()
	c := NewCache(tr, "tok", Options{Metrics: m})
	ctx := context.Background()

	Read(ctx, c, listAssignments, 1)
	Read(ctx, c, listAssignments, 1)
	_, _ = Mutate(ctx, c, createAssignment, item{Title: "Essay"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("read", outcomeMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("read", outcomeHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("mutate", outcomeMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidations.WithLabelValues(string(TagAssignments))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "401", err: &Error{Status: http.StatusUnauthorized}, want: true},
		{name: "403", err: &Error{Status: http.StatusForbidden}, want: false},
		{name: "network", err: AsError(context.DeadlineExceeded), want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUnauthorized(tc.err))
		})
	}
}
