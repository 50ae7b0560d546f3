package graph

import (
	"context"
	"sync"

	"github.com/cardlore/cardlore/internal/types"
)

// MockCall represents a recorded query on the mock client.
type MockCall struct {
	Cypher string
	Params map[string]any
}

// MockClient is an in-memory Client for tests. Results are served FIFO,
// every query is recorded, and session acquire/release is counted so tests
// can assert that no session is leaked.
type MockClient struct {
	mu sync.Mutex

	connected bool
	health    types.HealthStatus
	calls     []MockCall

	sessionsOpened int
	sessionsClosed int

	queryResults []QueryResult
	queryErrors  []error
	sessionError error
	connectError error
}

// NewMockClient creates a new mock client for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		health: types.Healthy("mock graph client"),
	}
}

// Connect marks the mock connected unless a connect error is configured.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close marks the mock disconnected.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// Health returns the configured health status.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return types.Unhealthy("not connected")
	}
	return m.health
}

// WithReadSession counts the session and runs fn with a runner bound to it.
func (m *MockClient) WithReadSession(ctx context.Context, fn func(Runner) error) error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return types.NewError(ErrCodeGraphConnectionClosed, "not connected")
	}
	if m.sessionError != nil {
		err := m.sessionError
		m.mu.Unlock()
		return err
	}
	m.sessionsOpened++
	m.mu.Unlock()

	runner := &mockRunner{client: m}
	defer func() {
		m.mu.Lock()
		runner.closed = true
		m.sessionsClosed++
		m.mu.Unlock()
	}()

	return fn(runner)
}

type mockRunner struct {
	client *MockClient
	closed bool
}

func (r *mockRunner) Run(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m := r.client
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.closed {
		return QueryResult{}, types.NewError(ErrCodeGraphSessionFailed, "session already closed")
	}

	m.calls = append(m.calls, MockCall{Cypher: cypher, Params: params})

	if len(m.queryErrors) > 0 {
		err := m.queryErrors[0]
		m.queryErrors = m.queryErrors[1:]
		if err != nil {
			return QueryResult{}, err
		}
	}

	if len(m.queryResults) > 0 {
		result := m.queryResults[0]
		m.queryResults = m.queryResults[1:]
		return result, nil
	}

	return QueryResult{Records: []map[string]any{}, Columns: []string{}}, nil
}

// AddRecords queues one result made of the given rows.
func (m *MockClient) AddRecords(records ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if records == nil {
		records = []map[string]any{}
	}
	m.queryResults = append(m.queryResults, QueryResult{Records: records})
}

// AddQueryError queues an error for the next Run call.
func (m *MockClient) AddQueryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErrors = append(m.queryErrors, err)
}

// SetSessionError makes session acquisition fail.
func (m *MockClient) SetSessionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionError = err
}

// SetConnectError makes Connect fail.
func (m *MockClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetHealthStatus configures what Health returns while connected.
func (m *MockClient) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = status
}

// Calls returns a copy of all recorded queries.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// LastCall returns the most recent query. It panics when nothing ran.
func (m *MockClient) LastCall() MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// SessionsOpened returns how many sessions were acquired.
func (m *MockClient) SessionsOpened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionsOpened
}

// OpenSessions returns acquired sessions not yet released.
func (m *MockClient) OpenSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionsOpened - m.sessionsClosed
}

// IsConnected returns whether the mock is in connected state.
func (m *MockClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}
