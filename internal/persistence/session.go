package persistence

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/tutorial-service/internal/repository"
)

const sessionKey = "storage_session"

// Session is a storage session scoped to one request. It pins a single pooled
// connection so every repository call in the request shares it.
type Session struct {
	repository.Store

	closeOnce sync.Once
	closer    func() error
	closeErr  error
}

// NewSession binds a store to the function that releases its resources.
func NewSession(store repository.Store, closer func() error) *Session {
	return &Session{Store: store, closer: closer}
}

// Close releases the session. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.closer != nil {
			s.closeErr = s.closer()
		}
	})
	return s.closeErr
}

// SessionOpener creates sessions.
type SessionOpener interface {
	OpenSession(ctx context.Context) (*Session, error)
}

// OpenSession checks a dedicated connection out of the pool.
func (d *Database) OpenSession(ctx context.Context) (*Session, error) {
	if d == nil || d.DB == nil {
		return nil, errors.New("database not configured")
	}
	conn, err := d.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return NewSession(repository.NewSQLStore(conn, d.Dialect), conn.Close), nil
}

// Gateway owns the session lifecycle for HTTP requests: one session is opened
// before the handler runs and closed exactly once afterwards, whatever the
// outcome.
type Gateway struct {
	opener SessionOpener
	logger *zap.Logger
}

// NewGateway constructs a Gateway.
func NewGateway(opener SessionOpener, logger *zap.Logger) *Gateway {
	return &Gateway{opener: opener, logger: logger}
}

// Handle is the fiber middleware. A failure to release the session fails the
// request unless the handler already failed.
func (g *Gateway) Handle(c *fiber.Ctx) (err error) {
	session, err := g.opener.OpenSession(c.UserContext())
	if err != nil {
		g.logger.Error("open storage session", zap.Error(err))
		return err
	}
	c.Locals(sessionKey, session)

	defer func() {
		c.Locals(sessionKey, nil)
		if closeErr := session.Close(); closeErr != nil {
			g.logger.Error("close storage session", zap.Error(closeErr))
			if err == nil {
				err = closeErr
			}
		}
	}()

	return c.Next()
}

// SessionFromContext returns the request's session.
func SessionFromContext(c *fiber.Ctx) (*Session, bool) {
	session, ok := c.Locals(sessionKey).(*Session)
	return session, ok && session != nil
}

var _ SessionOpener = (*Database)(nil)

