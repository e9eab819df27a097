package persistence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/tutorial-service/internal/config"
	"github.com/spec-kit/tutorial-service/internal/dbx"
	"github.com/spec-kit/tutorial-service/internal/domain"
	"github.com/spec-kit/tutorial-service/internal/repository"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "directory.db")
	db, err := Open(context.Background(), config.DatabaseConfig{DSN: dsn, MaxConns: 4}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(context.Background(), db, zap.NewNop()))
	return db
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, dbx.DialectPostgres, DialectFor("postgres://u:p@localhost/db"))
	assert.Equal(t, dbx.DialectPostgres, DialectFor("PostgreSQL://localhost/db"))
	assert.Equal(t, dbx.DialectSQLite, DialectFor("file:test.db"))
	assert.Equal(t, dbx.DialectSQLite, DialectFor("/tmp/app.db"))
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestSQLiteDSNOptions(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want url.Values
	}{
		{"defaults added", "file:test.db", url.Values{
			"_pragma": {"busy_timeout(5000)"},
			"_txlock": {"immediate"},
		}},
		{"caller settings kept", "file:test.db?_pragma=busy_timeout(100)&_txlock=deferred&_pragma=journal_mode(wal)", url.Values{
			"_pragma": {"busy_timeout(100)", "journal_mode(wal)"},
			"_txlock": {"deferred"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sqliteDSN(tt.dsn)
			require.NoError(t, err)
			base, rawQuery, ok := strings.Cut(got, "?")
			require.True(t, ok)
			assert.Equal(t, "file:test.db", base)
			query, err := url.ParseQuery(rawQuery)
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
		})
	}
}

func TestConcurrentWritersWaitForLock(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "directory.db")
	db, err := Open(ctx, config.DatabaseConfig{DSN: dsn, MaxConns: 10}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(ctx, db, zap.NewNop()))

	const writers = 40
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := db.OpenSession(ctx)
			if err != nil {
				errs <- err
				return
			}
			defer session.Close()
			errs <- session.WithTx(ctx, func(tx repository.Store) error {
				user := &domain.User{Email: fmt.Sprintf("user%02d@example.com", i), HashedPassword: "x", IsActive: true}
				if err := tx.Users().Create(ctx, user); err != nil {
					return err
				}
				_, err := tx.Users().GetByID(ctx, user.ID)
				return err
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	session, err := db.OpenSession(ctx)
	require.NoError(t, err)
	defer session.Close()
	users, err := session.Users().List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, users, writers)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, RunMigrations(context.Background(), db, zap.NewNop()))
	require.NoError(t, db.Ping(context.Background()))
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	session, err := db.OpenSession(ctx)
	require.NoError(t, err)

	user := &domain.User{Email: "deadpool@example.com", HashedPassword: "x", IsActive: true}
	require.NoError(t, session.Users().Create(ctx, user))
	assert.NotZero(t, user.ID)

	// Owners are not verified on insert.
	orphan := &domain.Item{Title: "Orphan", OwnerID: 999}
	require.NoError(t, session.Items().Create(ctx, orphan))

	require.NoError(t, session.Close())
	assert.NoError(t, session.Close(), "second close reports the first result")

	other, err := db.OpenSession(ctx)
	require.NoError(t, err)
	defer other.Close()

	got, err := other.Users().GetByEmail(ctx, "deadpool@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.IsActive)

	items, err := other.Items().ListByOwner(ctx, 999)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Description)
}

func TestSessionTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	session, err := db.OpenSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	boom := errors.New("boom")
	err = session.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, &domain.User{Email: "a@example.com", HashedPassword: "x", IsActive: true}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = session.Users().GetByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDuplicateEmailIsRejectedByStorage(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	session, err := db.OpenSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Users().Create(ctx, &domain.User{Email: "dup@example.com", HashedPassword: "x", IsActive: true}))
	assert.Error(t, session.Users().Create(ctx, &domain.User{Email: "dup@example.com", HashedPassword: "y", IsActive: true}))
}

type fakeOpener struct {
	opened   int
	closed   int
	closeErr error
	openErr  error
}

func (f *fakeOpener) OpenSession(context.Context) (*Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return NewSession(nil, func() error {
		f.closed++
		return f.closeErr
	}), nil
}

func TestGatewayClosesExactlyOnce(t *testing.T) {
	tests := []struct {
		name       string
		closeErr   error
		handler    fiber.Handler
		wantStatus int
	}{
		{
			name: "success",
			handler: func(c *fiber.Ctx) error {
				_, ok := SessionFromContext(c)
				if !ok {
					return fiber.ErrTeapot
				}
				return c.SendStatus(http.StatusOK)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "handler error",
			handler: func(c *fiber.Ctx) error {
				return fiber.NewError(http.StatusNotFound, "User not found")
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "handler panic",
			handler: func(c *fiber.Ctx) error {
				panic("exploded")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:     "close failure surfaces",
			closeErr: errors.New("connection reset"),
			handler: func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:     "handler error wins over close failure",
			closeErr: errors.New("connection reset"),
			handler: func(c *fiber.Ctx) error {
				return fiber.NewError(http.StatusBadRequest, "Email already registered")
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &fakeOpener{closeErr: tt.closeErr}
			app := fiber.New()
			app.Use(recover.New())
			app.Use(NewGateway(opener, zap.NewNop()).Handle)
			app.Get("/", tt.handler)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, 1, opener.opened)
			assert.Equal(t, 1, opener.closed)
		})
	}
}

func TestGatewayOpenFailure(t *testing.T) {
	opener := &fakeOpener{openErr: errors.New("pool exhausted")}
	app := fiber.New()
	app.Use(NewGateway(opener, zap.NewNop()).Handle)
	called := false
	app.Get("/", func(c *fiber.Ctx) error {
		called = true
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, called)
	assert.Zero(t, opener.closed)
}
