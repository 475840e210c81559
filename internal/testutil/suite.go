package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/events"
	"github.com/spec-kit/xpertshub/internal/notify"
)

// BaseServiceTestSuite gives service suites a fresh store, dispatcher and
// capturing mail sender per test.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	logger     *zap.Logger
	Store      *Store
	Dispatcher events.Dispatcher
	Mail       *CapturingSender
}

// SetupTest resets all state.
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	s.Store = NewStore()
	s.Dispatcher = events.NewInMemoryDispatcher()
	s.Mail = &CapturingSender{}
}

// GetContext returns the test context.
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetLogger returns a no-op logger.
func (s *BaseServiceTestSuite) GetLogger() *zap.Logger {
	return s.logger
}

// CapturingSender records messages and optionally fails.
type CapturingSender struct {
	mu   sync.Mutex
	Sent []notify.Message
	Err  error
}

func (c *CapturingSender) Send(_ context.Context, msg notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Sent = append(c.Sent, msg)
	return nil
}

// Messages returns a snapshot of delivered messages.
func (c *CapturingSender) Messages() []notify.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Message(nil), c.Sent...)
}
