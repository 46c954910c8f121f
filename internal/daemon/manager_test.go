package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComponent struct {
	name string
	deps []string

	mu       sync.Mutex
	events   *[]string
	initErr  error
	startErr error
	stopErr  error
	health   ComponentHealth
}

func newFakeComponent(name string, events *[]string, deps ...string) *fakeComponent {
	return &fakeComponent{name: name, deps: deps, events: events, health: Healthy()}
}

func (f *fakeComponent) Name() string           { return f.name }
func (f *fakeComponent) Dependencies() []string { return f.deps }

func (f *fakeComponent) Init(ctx context.Context) error {
	f.record("init:" + f.name)
	return f.initErr
}

func (f *fakeComponent) Start(ctx context.Context) error {
	f.record("start:" + f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(ctx context.Context) error {
	f.record("stop:" + f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(ctx context.Context) ComponentHealth {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.health
}

func (f *fakeComponent) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.events = append(*f.events, event)
}

func runDaemon(t *testing.T, d *Daemon) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not shut down")
		return nil
	}
}

func TestDaemon_StartAndStopOrder(t *testing.T) {
	var events []string

	d := New(time.Second)
	require.NoError(t, d.AddComponent(newFakeComponent("api", &events, "store")))
	require.NoError(t, d.AddComponent(newFakeComponent("store", &events)))
	require.NoError(t, d.AddComponent(newFakeComponent("worker", &events, "api")))

	require.NoError(t, runDaemon(t, d))

	assert.Equal(t, []string{
		"init:store", "init:api", "init:worker",
		"start:store", "start:api", "start:worker",
		"stop:worker", "stop:api", "stop:store",
	}, events)
}

func TestDaemon_UnknownDependency(t *testing.T) {
	var events []string

	d := New(time.Second)
	require.NoError(t, d.AddComponent(newFakeComponent("api", &events, "missing")))

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown component")
}

func TestDaemon_DependencyCycle(t *testing.T) {
	var events []string

	d := New(time.Second)
	require.NoError(t, d.AddComponent(newFakeComponent("a", &events, "b")))
	require.NoError(t, d.AddComponent(newFakeComponent("b", &events, "a")))

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestDaemon_StartFailureRollsBack(t *testing.T) {
	var events []string

	good := newFakeComponent("store", &events)
	bad := newFakeComponent("api", &events, "store")
	bad.startErr = assert.AnError

	d := New(time.Second)
	require.NoError(t, d.AddComponent(good))
	require.NoError(t, d.AddComponent(bad))

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start component api")
	// The already-started store must be stopped again.
	assert.Contains(t, events, "stop:store")
	assert.NotContains(t, events, "stop:api")
}

func TestDaemon_DuplicateComponent(t *testing.T) {
	var events []string

	d := New(time.Second)
	require.NoError(t, d.AddComponent(newFakeComponent("api", &events)))
	err := d.AddComponent(newFakeComponent("api", &events))
	require.Error(t, err)
}

func TestDaemon_HealthReportsStartedComponents(t *testing.T) {
	var events []string

	c := newFakeComponent("api", &events)
	c.health = Degraded("slow responses")

	d := New(time.Second)
	require.NoError(t, d.AddComponent(c))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	// The monitor runs one check immediately on startup.
	require.Eventually(t, func() bool {
		h, ok := d.Health()["api"]
		return ok && h.Status == HealthStatusDegraded
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
}
