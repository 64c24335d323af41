package form

import (
	"regexp"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithPresenter routes validation side effects to p. Without it, annotation
// requests are discarded.
func WithPresenter(p Presenter) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.presenter = p
		}
	}
}

// WithClock overrides the wall clock used to stamp signatures.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine validates and serialises form instances. One engine normally serves
// one rendered surface; it is safe for concurrent use, although a surface
// only ever has a single submission attempt in flight.
type Engine struct {
	presenter Presenter
	now       func() time.Time
	logger    *zap.Logger

	mu        sync.Mutex
	patterns  map[string]*regexp.Regexp
	lastStamp int64
}

// New constructs an Engine applying the provided options.
func New(options ...EngineOption) *Engine {
	e := &Engine{
		presenter: nopPresenter{},
		now:       time.Now,
		logger:    zap.NewNop(),
		patterns:  make(map[string]*regexp.Regexp),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// compile returns the cached expression for pattern. Patterns follow
// RegExp.test semantics: unanchored unless the pattern anchors itself.
func (e *Engine) compile(key, pattern string) (*regexp.Regexp, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if re, ok := e.patterns[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidPattern, err.Error(),
			goerr.V(KeyField, key), goerr.V(KeyPattern, pattern))
	}
	e.patterns[pattern] = re
	return re, nil
}

// stamp returns the signature timestamp in epoch milliseconds. Stamps never
// decrease across calls, even if the wall clock steps back.
func (e *Engine) stamp() int64 {
	now := e.now().UnixMilli()

	e.mu.Lock()
	defer e.mu.Unlock()
	if now < e.lastStamp {
		now = e.lastStamp
	}
	e.lastStamp = now
	return now
}
