// Package resources loads assets through per-kind handlers and caches them under named lifespans.
package resources

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

var (
	// ErrDuplicateHandler is returned by Register when the kind already has a handler.
	ErrDuplicateHandler = errors.New("resource handler already registered")

	// ErrNoHandler is returned when loading a kind without a handler.
	ErrNoHandler = errors.New("no resource handler registered")

	// ErrDefaultLifespan is returned by ClearLifespan for the default lifespan "".
	ErrDefaultLifespan = errors.New("the default lifespan cannot be cleared")

	// ErrWrongType is returned by the typed helpers when a cached object has another type.
	ErrWrongType = errors.New("resource has an unexpected type")

	// ErrClosed is returned by operations on a closed context.
	ErrClosed = errors.New("resource context is closed")
)

// Kind identifies which handler loads a resource.
type Kind int

const (
	KindTexture Kind = iota
	KindShader
	KindYAML
	KindSound
	KindMusic
	KindFont
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindShader:
		return "shader"
	case KindYAML:
		return "yaml"
	case KindSound:
		return "sound"
	case KindMusic:
		return "music"
	case KindFont:
		return "font"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Handler loads one kind of resource in two steps so the file work can run on a worker.
type Handler interface {
	// Decode reads and parses a file. It may run on any goroutine and must not touch the GPU.
	//
	// Parameters:
	//   - path: the cleaned file path
	//
	// Returns:
	//   - any: the intermediate result passed to Finish
	//   - error: a read or parse error
	Decode(path string) (any, error)

	// Finish turns a decoded result into the cached object. It always runs on the goroutine
	// that called Load or Preload, which owns the renderer.
	//
	// Parameters:
	//   - decoded: the value returned by Decode
	//
	// Returns:
	//   - any: the object to cache
	//   - error: an upload or construction error
	Finish(decoded any) (any, error)
}

// LoaderFunc adapts a single function to a Handler that does all its work in Decode.
type LoaderFunc func(path string) (any, error)

func (f LoaderFunc) Decode(path string) (any, error) {
	return f(path)
}

func (f LoaderFunc) Finish(decoded any) (any, error) {
	return decoded, nil
}

// entry is one cached object.
type entry struct {
	kind     Kind
	value    any
	lifespan string
}

// key identifies a cache entry. The same file may be cached once per kind.
type key struct {
	kind Kind
	path string
}

// resourceContext is the implementation of the Context interface.
type resourceContext struct {
	mu *sync.Mutex

	handlers map[Kind]Handler
	cache    map[key]*entry

	workers int
	pool    worker.DynamicWorkerPool
	closed  bool
}

// Context owns a handler registry and the cache of everything loaded through it.
type Context interface {
	// Register installs the handler for a kind.
	//
	// Parameters:
	//   - kind: the resource kind
	//   - h: the handler
	//
	// Returns:
	//   - error: ErrDuplicateHandler if the kind already has one
	Register(kind Kind, h Handler) error

	// Load returns the cached object for path or loads it with the kind's handler. Paths are
	// normalized with filepath.Clean, so "a/../b.png" and "b.png" share an entry.
	//
	// Parameters:
	//   - kind: the resource kind
	//   - path: the file path
	//   - lifespan: the lifespan to file a new object under; "" is the default lifespan
	//
	// Returns:
	//   - any: the loaded object
	//   - error: ErrNoHandler or the handler's error
	Load(kind Kind, path, lifespan string) (any, error)

	// Preload loads many files of one kind, decoding them in parallel on the worker pool and
	// finishing them on the calling goroutine. Paths already cached are skipped.
	//
	// Parameters:
	//   - kind: the resource kind
	//   - lifespan: the lifespan to file new objects under
	//   - paths: the files to load
	//
	// Returns:
	//   - error: every failure joined, or nil; successful files are cached either way
	Preload(kind Kind, lifespan string, paths ...string) error

	// Cached reports whether path is cached for kind.
	Cached(kind Kind, path string) bool

	// ClearLifespan releases and evicts every object filed under lifespan. Objects with a
	// Release() error or Close() error method are released.
	//
	// Parameters:
	//   - lifespan: a non-default lifespan
	//
	// Returns:
	//   - error: ErrDefaultLifespan, or the release errors joined
	ClearLifespan(lifespan string) error

	// Close releases every cached object, including the default lifespan, and stops the
	// worker pool.
	Close() error
}

var _ Context = &resourceContext{}

// NewContext creates an empty resource context.
//
// Parameters:
//   - options: variadic list of ContextBuilderOption functions to configure the context
//
// Returns:
//   - Context: the new context
func NewContext(options ...ContextBuilderOption) Context {
	c := &resourceContext{
		mu:       &sync.Mutex{},
		handlers: make(map[Kind]Handler),
		cache:    make(map[key]*entry),
		workers:  4,
	}
	for _, opt := range options {
		opt(c)
	}
	c.pool = worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)
	return c
}

func (c *resourceContext) Register(kind Kind, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.handlers[kind]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, kind)
	}
	c.handlers[kind] = h
	return nil
}

// lookup returns the handler and any cached value. Caller must hold the mutex.
func (c *resourceContext) lookup(kind Kind, path string) (Handler, *entry, error) {
	if c.closed {
		return nil, nil, ErrClosed
	}
	h, ok := c.handlers[kind]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoHandler, kind)
	}
	return h, c.cache[key{kind, path}], nil
}

func (c *resourceContext) Load(kind Kind, path, lifespan string) (any, error) {
	path = filepath.Clean(path)

	c.mu.Lock()
	h, e, err := c.lookup(kind, path)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e.value, nil
	}

	decoded, err := h.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", kind, path, err)
	}
	value, err := h.Finish(decoded)
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", kind, path, err)
	}
	return c.store(kind, path, lifespan, value), nil
}

// store caches value unless another load of the same file won the race, in which case the
// duplicate is released and the cached object returned.
func (c *resourceContext) store(kind Kind, path, lifespan string, value any) any {
	c.mu.Lock()
	if e, ok := c.cache[key{kind, path}]; ok {
		c.mu.Unlock()
		if err := release(value); err != nil {
			log.Printf("[Resources] release duplicate %s %s: %v", kind, path, err)
		}
		return e.value
	}
	c.cache[key{kind, path}] = &entry{kind: kind, value: value, lifespan: lifespan}
	c.mu.Unlock()
	return value
}

func (c *resourceContext) Preload(kind Kind, lifespan string, paths ...string) error {
	c.mu.Lock()
	h, _, err := c.lookup(kind, "")
	if err != nil {
		c.mu.Unlock()
		return err
	}
	var pending []string
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		if _, ok := c.cache[key{kind, p}]; !ok {
			pending = append(pending, p)
		}
	}
	c.mu.Unlock()

	type result struct {
		decoded any
		err     error
	}
	results := make([]result, len(pending))

	// the pool discards task results, so each task writes its own slot and the
	// WaitGroup is the barrier
	var wg sync.WaitGroup
	for i, p := range pending {
		wg.Add(1)
		idx, path := i, p
		c.pool.SubmitTask(worker.Task{
			ID:      idx,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				decoded, err := h.Decode(path)
				results[idx] = result{decoded: decoded, err: err}
				return nil, nil
			},
		})
	}
	wg.Wait()

	var errs []error
	for i, res := range results {
		path := pending[i]
		if res.err != nil {
			errs = append(errs, fmt.Errorf("preload %s %s: %w", kind, path, res.err))
			continue
		}
		value, err := h.Finish(res.decoded)
		if err != nil {
			errs = append(errs, fmt.Errorf("preload %s %s: %w", kind, path, err))
			continue
		}
		c.store(kind, path, lifespan, value)
	}
	if len(pending) > 0 {
		log.Printf("[Resources] preloaded %d/%d %s files into lifespan %q", len(pending)-len(errs), len(pending), kind, lifespan)
	}
	return errors.Join(errs...)
}

func (c *resourceContext) Cached(kind Kind, path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.cache[key{kind, filepath.Clean(path)}]
	return ok
}

func (c *resourceContext) ClearLifespan(lifespan string) error {
	if lifespan == "" {
		return ErrDefaultLifespan
	}
	return c.evict(func(e *entry) bool { return e.lifespan == lifespan })
}

// evict removes the matching entries under the lock and releases them outside it.
func (c *resourceContext) evict(match func(*entry) bool) error {
	c.mu.Lock()
	var victims []*entry
	var paths []string
	for k, e := range c.cache {
		if match(e) {
			victims = append(victims, e)
			paths = append(paths, k.path)
			delete(c.cache, k)
		}
	}
	c.mu.Unlock()

	var errs []error
	for i, e := range victims {
		if err := release(e.value); err != nil {
			errs = append(errs, fmt.Errorf("release %s %s: %w", e.kind, paths[i], err))
		}
	}
	return errors.Join(errs...)
}

func (c *resourceContext) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.pool.Stop()
	return c.evict(func(*entry) bool { return true })
}

// release frees an object that owns GPU or file resources.
func release(v any) error {
	switch r := v.(type) {
	case interface{ Release() error }:
		return r.Release()
	case io.Closer:
		return r.Close()
	}
	return nil
}
