// Package process owns the per-process binder state: the device gateway,
// the reference tables every thread shares, the thread-pool policy, and the
// context-manager claim (spec §4.5).
//
// There is exactly one of these per OS process talking to a given binder
// device, the way go-ublk's internal/logging keeps one process-wide default
// logger behind a sync.Once; this package generalizes that same discipline
// to a larger bundle of state, with sync.RWMutex guarding the fields that
// change after init (thread count, context-manager flag) while the
// immutable fields (gateway, tables, dispatcher) are read lock-free.
package process

import (
	"sync"

	"github.com/ehrlich-b/gobinder/internal/binderthread"
	"github.com/ehrlich-b/gobinder/internal/constants"
	"github.com/ehrlich-b/gobinder/internal/errs"
	"github.com/ehrlich-b/gobinder/internal/gateway"
	"github.com/ehrlich-b/gobinder/internal/logging"
	"github.com/ehrlich-b/gobinder/internal/refs"
)

// Config configures process initialization.
type Config struct {
	// DevicePath is the binder data-plane device. Empty uses the default.
	DevicePath string

	// MaxThreads bounds the pooled-thread count BINDER_SET_MAX_THREADS
	// advertises to the driver. Zero uses constants.DefaultMaxThreads.
	MaxThreads int

	// MmapSize bounds the read-only delivery area. Zero uses
	// constants.DefaultMmapSize.
	MmapSize int

	// Dispatch handles inbound transactions on every pooled thread. It may
	// be nil for a pure client process that never registers native
	// bindings, in which case an inbound BR_TRANSACTION is an error.
	Dispatch binderthread.Dispatcher

	// Gateway lets tests and the context-manager/service bootstrap inject a
	// gateway.MockGateway instead of opening a real device.
	Gateway gateway.Gateway

	// Observer receives transaction and thread-pool-depth samples as this
	// process's binder activity happens. Nil installs a no-op observer.
	Observer Observer
}

// Observer receives metrics samples from a process's binder activity. The
// root package's Metrics-backed Observer satisfies this structurally, the
// same way its Registry decouples internal/dispatch from the root package's
// Native type.
type Observer interface {
	ObserveTransact(replyBytes uint64, latencyNs uint64, success bool)
	ObserveOneWay(sentBytes uint64, success bool)
	ObserveDispatch(dataBytes uint64, latencyNs uint64, success bool)
	ObserveThreadPoolDepth(depth uint32)
}

type noOpObserver struct{}

func (noOpObserver) ObserveTransact(uint64, uint64, bool) {}
func (noOpObserver) ObserveOneWay(uint64, bool)           {}
func (noOpObserver) ObserveDispatch(uint64, uint64, bool) {}
func (noOpObserver) ObserveThreadPoolDepth(uint32)        {}

// State is one process's binder state: the device gateway, the shared
// reference tables, and the thread-pool/context-manager bookkeeping that
// every pooled ThreadState consults or mutates.
type State struct {
	gw gateway.Gateway

	handles *refs.HandleTable
	natives *refs.NativeTable
	death   *refs.DeathWatchers

	dispatch binderthread.Dispatcher
	observer Observer

	logger *logging.Logger

	mu           sync.RWMutex
	maxThreads   int
	threadCount  int
	isContextMgr bool
	protoVersion int32
}

var (
	once     sync.Once
	instance *State
	initErr  error
)

// Init performs the one-time per-process binder setup (spec §4.5: "process
// initialization happens exactly once"): opens the device, verifies the
// protocol version, advertises the thread-pool ceiling, and maps the
// read-only delivery area. Subsequent calls return the same *State
// regardless of cfg, mirroring the teacher's logging.Default() singleton.
func Init(cfg Config) (*State, error) {
	once.Do(func() {
		instance, initErr = newState(cfg)
	})
	return instance, initErr
}

// Current returns the already-initialized process state, or an error if
// Init has not run yet.
func Current() (*State, error) {
	if instance == nil {
		return nil, errs.New("process.current", errs.NotAllowed, "process state not initialized")
	}
	return instance, nil
}

func newState(cfg Config) (*State, error) {
	gw := cfg.Gateway
	if gw == nil {
		path := cfg.DevicePath
		if path == "" {
			path = constants.DefaultBinderPath
		}
		opened, err := gateway.Open(gateway.Config{DevicePath: path, MmapSize: cfg.MmapSize})
		if err != nil {
			return nil, errs.Wrap("process.init", err)
		}
		gw = opened
	}

	version, err := gw.VerifyVersion()
	if err != nil {
		return nil, errs.Wrap("process.init", err)
	}
	if version != constants.BinderCurrentProtocolVersion {
		return nil, errs.Newf("process.init", errs.BadValue, "driver protocol version %d does not match %d", version, constants.BinderCurrentProtocolVersion)
	}

	maxThreads := cfg.MaxThreads
	if maxThreads <= 0 {
		maxThreads = constants.DefaultMaxThreads
	}
	if err := gw.SetMaxThreads(uint32(maxThreads)); err != nil {
		return nil, errs.Wrap("process.init", err)
	}

	mmapSize := cfg.MmapSize
	if mmapSize <= 0 {
		mmapSize = constants.DefaultMmapSize
	}
	if err := gw.MmapReadArea(mmapSize); err != nil {
		return nil, errs.Wrap("process.init", err)
	}

	observer := cfg.Observer
	if observer == nil {
		observer = noOpObserver{}
	}

	return &State{
		gw:           gw,
		handles:      refs.NewHandleTable(),
		natives:      refs.NewNativeTable(),
		death:        refs.NewDeathWatchers(),
		dispatch:     cfg.Dispatch,
		observer:     observer,
		logger:       logging.Default(),
		maxThreads:   maxThreads,
		protoVersion: version,
	}, nil
}

// Observer returns the process-wide metrics observer installed at Init.
func (s *State) Observer() Observer { return s.observer }

// Close releases the device fd and mmap region. Callers should only do this
// at process shutdown; there is no way to re-Init afterward.
func (s *State) Close() error {
	return s.gw.Close()
}

// Handles returns the process-wide handle (remote-proxy) reference table.
func (s *State) Handles() *refs.HandleTable { return s.handles }

// Natives returns the process-wide native-binding reference table.
func (s *State) Natives() *refs.NativeTable { return s.natives }

// Death returns the process-wide death-notification registry.
func (s *State) Death() *refs.DeathWatchers { return s.death }

// BecomeContextManager claims handle 0 for this process (spec §4.5: "the
// first process to register becomes the well-known context manager, service
// manager in Android's usage"). It fails if another process already holds
// the claim.
func (s *State) BecomeContextManager() error {
	if err := s.gw.SetContextManager(0); err != nil {
		return errs.Wrap("process.becomeContextManager", err)
	}
	s.mu.Lock()
	s.isContextMgr = true
	s.mu.Unlock()
	return nil
}

// IsContextManager reports whether this process successfully claimed handle 0.
func (s *State) IsContextManager() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isContextMgr
}

// NewThread builds a ThreadState bound to this process's gateway, tables,
// and dispatcher, wired so BR_SPAWN_LOOPER grows the pool via
// SpawnPooledThread (spec §4.5).
func (s *State) NewThread() *binderthread.ThreadState {
	return binderthread.New(binderthread.Deps{
		Gateway:     s.gw,
		Handles:     s.handles,
		Natives:     s.natives,
		Death:       s.death,
		Dispatch:    s.dispatch,
		SpawnLooper: s.SpawnPooledThread,
	})
}

// JoinThreadPool converts the calling goroutine's OS thread into a pooled
// looper for the lifetime of the call (spec §4.4/§4.5); it returns when the
// driver signals a terminal condition or the gateway is closed.
func (s *State) JoinThreadPool() error {
	s.mu.Lock()
	s.threadCount++
	depth := s.threadCount
	s.mu.Unlock()
	s.observer.ObserveThreadPoolDepth(uint32(depth))
	defer func() {
		s.mu.Lock()
		s.threadCount--
		depth := s.threadCount
		s.mu.Unlock()
		s.observer.ObserveThreadPoolDepth(uint32(depth))
	}()

	return s.NewThread().JoinThreadPool()
}

// SpawnPooledThread is registered as the process's binderthread.SpawnLooper
// callback: the driver asks for another pooled thread via BR_SPAWN_LOOPER,
// and this starts one in a fresh goroutine, subject to the max-threads
// ceiling negotiated at Init (spec §4.5).
func (s *State) SpawnPooledThread() {
	s.mu.Lock()
	if s.threadCount >= s.maxThreads {
		s.mu.Unlock()
		s.logger.Warn("refusing to spawn pooled thread, at max", "max_threads", s.maxThreads)
		return
	}
	s.threadCount++
	depth := s.threadCount
	s.mu.Unlock()
	s.observer.ObserveThreadPoolDepth(uint32(depth))

	go func() {
		defer func() {
			s.mu.Lock()
			s.threadCount--
			depth := s.threadCount
			s.mu.Unlock()
			s.observer.ObserveThreadPoolDepth(uint32(depth))
		}()
		if err := s.NewThread().JoinThreadPool(); err != nil {
			s.logger.Warn("pooled thread exited", "error", err)
		}
	}()
}

// MaxThreads returns the thread-pool ceiling negotiated at Init.
func (s *State) MaxThreads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxThreads
}

// ThreadCount returns the number of threads currently in the pool (including
// the ones mid-spawn), for introspection and tests.
func (s *State) ThreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threadCount
}
