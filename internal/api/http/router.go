package http

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tutorial-service/internal/api/http/handlers"
	"github.com/spec-kit/tutorial-service/internal/auth"
	"github.com/spec-kit/tutorial-service/internal/domain"
	"github.com/spec-kit/tutorial-service/internal/persistence"
)

// NewApp builds a fiber app using goccy/go-json for bodies. Values read from
// the request are immutable so handlers may retain them past the request.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:     name,
		Immutable:   true,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
}

// TutorialRoutes bundles dependencies of the tutorial API.
type TutorialRoutes struct {
	Health    *handlers.HealthHandler
	Users     *handlers.UsersHandler
	Items     *handlers.ItemsHandler
	Docs      *handlers.DocsHandler
	Pages     *handlers.PagesHandler
	Gate      *auth.Gate
	StaticDir string
}

// RegisterTutorialRoutes wires the tutorial API. /users/me is registered
// before /users/:user_id so the literal path wins.
func RegisterTutorialRoutes(app *fiber.App, r TutorialRoutes) {
	registerHealth(app, r.Health)

	app.Get("/", r.Items.Root)
	app.Post("/token", r.Users.Token)

	app.Get("/users/me", r.Gate.Require(domain.ScopeMe), auth.RequireActive(), r.Users.Me)
	app.Get("/users/me/items/", r.Gate.Require(domain.ScopeItems), auth.RequireActive(), r.Users.MyItems)
	app.Get("/status/", r.Gate.Require(), r.Users.Status)
	app.Get("/users/:user_id", r.Users.ReadUser)
	app.Post("/user/", r.Users.CreateUser)

	app.Get("/items-header/:item_id", r.Items.ReadItemHeader)
	app.Get("/items/", r.Items.ListItems)
	app.Post("/items/", r.Items.CreateItem)
	app.Get("/items/:item_id", r.Items.ReadItem)
	app.Put("/items/:item_id", r.Items.UpdateItem)
	app.Get("/model/:model_name", r.Items.ReadModel)
	app.Get("/elements/", r.Items.ReadElements)

	app.Get("/openapi.json", r.Docs.OpenAPI)
	app.Get("/docs", r.Docs.Swagger)
	app.Get("/redoc", r.Docs.Redoc)

	if r.StaticDir != "" {
		app.Static("/static", r.StaticDir)
	}
	app.Get("/pages/items/:id", r.Pages.ItemPage)
	app.Get("/video", r.Pages.Video)
}

// DirectoryRoutes bundles dependencies of the directory API.
type DirectoryRoutes struct {
	Health    *handlers.HealthHandler
	Directory *handlers.DirectoryHandler
	Notes     *handlers.NotesHandler
	Gateway   *persistence.Gateway
}

// RegisterDirectoryRoutes wires the directory API. Users and items run inside
// a storage session; notes use the shared pool.
func RegisterDirectoryRoutes(app *fiber.App, r DirectoryRoutes) {
	registerHealth(app, r.Health)

	session := r.Gateway.Handle
	app.Post("/users/", session, r.Directory.CreateUser)
	app.Get("/users/", session, r.Directory.ListUsers)
	app.Get("/users/:user_id", session, r.Directory.GetUser)
	app.Post("/users/:user_id/items/", session, r.Directory.CreateItemForUser)
	app.Get("/items/", session, r.Directory.ListItems)

	app.Get("/notes/", r.Notes.List)
	app.Post("/notes/", r.Notes.Create)
}

func registerHealth(app *fiber.App, h *handlers.HealthHandler) {
	if h == nil {
		return
	}
	app.Get("/health/live", h.Live)
	app.Get("/health/ready", h.Ready)
	app.Get("/metrics", h.Metrics)
}
