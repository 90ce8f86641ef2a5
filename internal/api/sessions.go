package api

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/loop"
	"github.com/vultisig/xpay/internal/transfer"
)

var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	session *transfer.Session
	cancel  context.CancelFunc
}

// Sessions owns one event loop per transfer session.
type Sessions struct {
	ctx      context.Context
	deps     transfer.Deps
	loopSize int
	logger   *logrus.Logger

	mu       sync.Mutex
	sessions map[string]entry
}

func NewSessions(ctx context.Context, deps transfer.Deps, loopSize int, logger *logrus.Logger) *Sessions {
	return &Sessions{
		ctx:      ctx,
		deps:     deps,
		loopSize: loopSize,
		logger:   logger,
		sessions: make(map[string]entry),
	}
}

func (s *Sessions) Create() *transfer.Session {
	ctx, cancel := context.WithCancel(s.ctx)
	l := loop.New(s.logger, s.loopSize)
	sess := transfer.NewSession(ctx, l, s.deps, s.logger)
	go func() {
		if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.WithError(err).WithField("session", sess.ID()).Error("session loop stopped")
		}
	}()

	s.mu.Lock()
	s.sessions[sess.ID()] = entry{session: sess, cancel: cancel}
	s.mu.Unlock()
	return sess
}

func (s *Sessions) Get(id string) (*transfer.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Close stops the session's loop. In-flight requests complete into nothing.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.cancel()
	return nil
}

// CloseAll stops every session loop and returns how many were open.
func (s *Sessions) CloseAll() int {
	s.mu.Lock()
	open := s.sessions
	s.sessions = make(map[string]entry)
	s.mu.Unlock()
	for _, e := range open {
		e.cancel()
	}
	return len(open)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
