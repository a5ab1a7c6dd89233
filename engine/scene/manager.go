package scene

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

var (
	// ErrDuplicateScene is returned when adding a scene whose name is already managed.
	ErrDuplicateScene = errors.New("scene already managed")

	// ErrUnknownScene is returned for names that are not managed.
	ErrUnknownScene = errors.New("unknown scene")
)

// manager is the implementation of the Manager interface.
type manager struct {
	mu *sync.RWMutex

	scenes map[string]Scene

	// updatePool runs scene updates concurrently when updateWorkers > 1.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int
}

// Manager owns a set of named scenes and drives the active ones.
// Thread-safe for concurrent access.
type Manager interface {
	// Add takes ownership of a scene and runs its Init.
	//
	// Parameters:
	//   - s: the scene to add
	//
	// Returns:
	//   - error: ErrDuplicateScene or the scene's init error, in which case the scene is not added
	Add(s Scene) error

	// Remove forgets a scene. Unknown names are ignored.
	Remove(name string)

	// Scene returns a managed scene by name, or nil.
	Scene(name string) Scene

	// SetActive enables or disables a managed scene.
	//
	// Parameters:
	//   - name: the scene name
	//   - active: the new state
	//
	// Returns:
	//   - error: ErrUnknownScene
	SetActive(name string, active bool) error

	// DeactivateAll disables every scene.
	DeactivateAll()

	// Active returns the active scenes sorted by Order, ties broken by name.
	Active() []Scene

	// Update updates every active scene. With more than one update worker the scenes run
	// concurrently and their relative order is not kept.
	//
	// Parameters:
	//   - dt: the tick length in seconds
	//
	// Returns:
	//   - error: every scene error joined
	Update(dt float32) error

	// Render renders every active scene in order, stopping at the first error.
	//
	// Parameters:
	//   - dt: the time since the last render in seconds
	//
	// Returns:
	//   - error: the first render error
	Render(dt float32) error

	// Close stops the update workers.
	Close()
}

var _ Manager = &manager{}

// NewManager creates an empty scene manager.
//
// Parameters:
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the new manager
func NewManager(options ...ManagerBuilderOption) Manager {
	m := &manager{
		mu:            &sync.RWMutex{},
		scenes:        make(map[string]Scene),
		updateWorkers: 1,
	}
	for _, option := range options {
		option(m)
	}
	if m.updateWorkers > 1 {
		m.updatePool = worker.NewDynamicWorkerPool(m.updateWorkers, 256, 1*time.Second)
	}
	return m
}

func (m *manager) Add(s Scene) error {
	m.mu.Lock()
	if _, ok := m.scenes[s.Name()]; ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateScene, s.Name())
	}
	// reserve the name so a concurrent Add of the same name fails
	m.scenes[s.Name()] = s
	m.mu.Unlock()

	if err := s.Init(); err != nil {
		m.mu.Lock()
		delete(m.scenes, s.Name())
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *manager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scenes, name)
}

func (m *manager) Scene(name string) Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scenes[name]
}

func (m *manager) SetActive(name string, active bool) error {
	m.mu.Lock()
	s, ok := m.scenes[name]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	s.SetActive(active)
	return nil
}

func (m *manager) DeactivateAll() {
	m.mu.Lock()
	scenes := make([]Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		scenes = append(scenes, s)
	}
	m.mu.Unlock()

	for _, s := range scenes {
		s.SetActive(false)
	}
}

func (m *manager) Active() []Scene {
	m.mu.RLock()
	active := make([]Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		if s.Active() {
			active = append(active, s)
		}
	}
	m.mu.RUnlock()

	sort.Slice(active, func(i, j int) bool {
		if active[i].Order() != active[j].Order() {
			return active[i].Order() < active[j].Order()
		}
		return active[i].Name() < active[j].Name()
	})
	return active
}

func (m *manager) Update(dt float32) error {
	active := m.Active()
	if m.updatePool == nil || len(active) < 2 {
		var errs []error
		for _, s := range active {
			if err := s.Update(dt); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	// A WaitGroup is the per-tick barrier; results land in per-scene slots.
	errs := make([]error, len(active))
	var wg sync.WaitGroup
	for i, s := range active {
		wg.Add(1)
		m.updatePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = s.Update(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (m *manager) Render(dt float32) error {
	for _, s := range m.Active() {
		if err := s.Render(dt); err != nil {
			return err
		}
	}
	return nil
}

func (m *manager) Close() {
	if m.updatePool != nil {
		m.updatePool.Stop()
		log.Printf("[Scene] stopped %d update workers", m.updateWorkers)
	}
}
