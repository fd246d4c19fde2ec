package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// ErrUnavailable is returned once the supervisor has given up on the database,
// or when no database was configured at all.
var ErrUnavailable = errors.New("database unavailable")

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Querier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type Pool interface {
	Querier
	Ping(context.Context) error
	Close()
}

type Connector func(ctx context.Context, rawURL string) (Pool, error)

func PgxConnector(ctx context.Context, rawURL string) (Pool, error) {
	pool, err := Connect(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

type SupervisorOptions struct {
	URL        string
	MaxRetries int
	Backoff    time.Duration
	Connect    Connector
	Logger     *zap.Logger
}

// Supervisor owns the relational pool. It moves Disconnected -> Connecting ->
// Ready, drops back to Disconnected when a caller reports a broken
// connection, and ends in Failed once a bounded retry run is exhausted.
// Failed is terminal.
type Supervisor struct {
	mu         sync.Mutex
	state      State
	pool       Pool
	url        string
	maxRetries uint64
	backoff    time.Duration
	connect    Connector
	log        *zap.Logger
	lastErr    error
	// dialing is non-nil while one caller connects outside mu; it is closed
	// when that attempt settles.
	dialing chan struct{}
}

func NewSupervisor(opts SupervisorOptions) *Supervisor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	connect := opts.Connect
	if connect == nil {
		connect = PgxConnector
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = time.Millisecond
	}
	s := &Supervisor{
		state:      StateDisconnected,
		url:        strings.TrimSpace(opts.URL),
		maxRetries: uint64(retries),
		backoff:    backoff,
		connect:    connect,
		log:        logger,
	}
	if s.url == "" {
		s.state = StateFailed
		s.lastErr = errors.New("DATABASE_URL is not configured")
	}
	return s
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect runs the boot-time connection loop.
func (s *Supervisor) Connect(ctx context.Context) error {
	err := retry.Do(ctx, s.policy(), func(ctx context.Context) error {
		if _, err := s.acquire(ctx); err != nil {
			if errors.Is(err, ErrUnavailable) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return s.giveUp(err)
	}
	return nil
}

// Do hands fn a ready pool. Acquisition failures are retried. A failure from
// fn itself is retried only when pgconn reports nothing reached the server;
// other connection-class failures invalidate the pool and are returned as is,
// so a statement that may have executed is never replayed.
func (s *Supervisor) Do(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	lastWasConnection := false
	err := retry.Do(ctx, s.policy(), func(ctx context.Context) error {
		pool, err := s.acquire(ctx)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				lastWasConnection = false
				return err
			}
			lastWasConnection = true
			return retry.RetryableError(err)
		}
		err = fn(ctx, pool)
		lastWasConnection = false
		switch {
		case err == nil:
			return nil
		case pgconn.SafeToRetry(err):
			lastWasConnection = true
			s.markBroken(pool, err)
			return retry.RetryableError(err)
		case IsConnectionError(err):
			s.markBroken(pool, err)
			return err
		default:
			return err
		}
	})
	if err == nil {
		return nil
	}
	if lastWasConnection && ctx.Err() == nil {
		return s.giveUp(err)
	}
	return err
}

func (s *Supervisor) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	if s.state != StateFailed {
		s.state = StateDisconnected
	}
}

func (s *Supervisor) policy() retry.Backoff {
	return retry.WithMaxRetries(s.maxRetries, retry.NewConstant(s.backoff))
}

func (s *Supervisor) acquire(ctx context.Context) (Pool, error) {
	for {
		s.mu.Lock()
		switch s.state {
		case StateReady:
			pool := s.pool
			s.mu.Unlock()
			return pool, nil
		case StateFailed:
			err := s.lastErr
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if wait := s.dialing; wait != nil {
			s.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		done := make(chan struct{})
		s.dialing = done
		s.state = StateConnecting
		s.mu.Unlock()

		pool, err := s.dial(ctx)
		return s.settle(done, pool, err)
	}
}

func (s *Supervisor) dial(ctx context.Context) (Pool, error) {
	pool, err := s.connect(ctx, s.url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// settle publishes the outcome of a dial started by acquire and wakes waiters.
func (s *Supervisor) settle(done chan struct{}, pool Pool, err error) (Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialing = nil
	defer close(done)

	if s.state != StateConnecting {
		// Close or giveUp ran while dialing.
		if pool != nil {
			pool.Close()
		}
		if s.state == StateFailed {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, s.lastErr)
		}
		return nil, errors.New("database supervisor closed while connecting")
	}
	if err != nil {
		s.state = StateDisconnected
		s.lastErr = err
		s.log.Warn("database connect attempt failed", zap.Error(err))
		return nil, err
	}
	s.pool = pool
	s.state = StateReady
	s.lastErr = nil
	s.log.Info("database pool ready")
	return pool, nil
}

func (s *Supervisor) markBroken(pool Pool, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != pool || s.state != StateReady {
		return
	}
	s.log.Warn("database connection lost; reconnecting", zap.Error(cause))
	s.pool.Close()
	s.pool = nil
	s.state = StateDisconnected
}

func (s *Supervisor) giveUp(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.lastErr = err
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	s.log.Error("database retries exhausted", zap.Error(err))
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	lowered := strings.ToLower(err.Error())
	for _, marker := range []string{"closed pool", "conn closed", "connection reset", "broken pipe", "connection refused"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
