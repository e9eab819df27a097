package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tutorial-service/internal/api/dto"
	"github.com/spec-kit/tutorial-service/internal/persistence"
	"github.com/spec-kit/tutorial-service/internal/service"
	"github.com/spec-kit/tutorial-service/internal/validation"
	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

const defaultPageLimit = 100

var errNoSession = errors.New("storage session missing from request")

// DirectoryHandler serves users and items through the request's storage session.
type DirectoryHandler struct {
	directory *service.DirectoryService
	validator *validation.Validator
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService, validator *validation.Validator) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, validator: validator}
}

// CreateUser handles POST /users/.
func (h *DirectoryHandler) CreateUser(c *fiber.Ctx) error {
	session, err := requestSession(c)
	if err != nil {
		return err
	}
	var req dto.UserCreate
	if err := h.validator.Decode(c.Body(), validation.SchemaUserCreate, &req); err != nil {
		return err
	}

	user, err := h.directory.CreateUser(c.UserContext(), session, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// ListUsers handles GET /users/.
func (h *DirectoryHandler) ListUsers(c *fiber.Ctx) error {
	session, err := requestSession(c)
	if err != nil {
		return err
	}
	skip, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	users, err := h.directory.ListUsers(c.UserContext(), session, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(users))
}

// GetUser handles GET /users/{user_id}.
func (h *DirectoryHandler) GetUser(c *fiber.Ctx) error {
	session, err := requestSession(c)
	if err != nil {
		return err
	}
	userID, err := validation.PathInt(c, "user_id", validation.IntBounds{})
	if err != nil {
		return err
	}

	user, err := h.directory.GetUser(c.UserContext(), session, userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// CreateItemForUser handles POST /users/{user_id}/items/.
func (h *DirectoryHandler) CreateItemForUser(c *fiber.Ctx) error {
	session, err := requestSession(c)
	if err != nil {
		return err
	}
	userID, err := validation.PathInt(c, "user_id", validation.IntBounds{})
	if err != nil {
		return err
	}
	var req dto.ItemCreate
	if err := h.validator.Decode(c.Body(), validation.SchemaItemCreate, &req); err != nil {
		return err
	}

	item, err := h.directory.CreateItemForUser(c.UserContext(), session, userID, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewItemResponse(*item))
}

// ListItems handles GET /items/.
func (h *DirectoryHandler) ListItems(c *fiber.Ctx) error {
	session, err := requestSession(c)
	if err != nil {
		return err
	}
	skip, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	items, err := h.directory.ListItems(c.UserContext(), session, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewItemResponses(items))
}

func requestSession(c *fiber.Ctx) (*persistence.Session, error) {
	session, ok := persistence.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(errNoSession)
	}
	return session, nil
}

type pageQuery struct {
	Skip  *int64 `query:"skip"`
	Limit *int64 `query:"limit"`
}

// pageParams reads skip and limit; both are non-negative with no upper bound.
func pageParams(c *fiber.Ctx) (skip, limit int, err error) {
	var q pageQuery
	if err := validation.BindQuery(c, &q); err != nil {
		return 0, 0, err
	}
	nonNegative := validation.AtLeast(0)
	if err := nonNegative.CheckOptional("query", "skip", q.Skip); err != nil {
		return 0, 0, err
	}
	if err := nonNegative.CheckOptional("query", "limit", q.Limit); err != nil {
		return 0, 0, err
	}
	skip, limit = 0, defaultPageLimit
	if q.Skip != nil {
		skip = int(*q.Skip)
	}
	if q.Limit != nil {
		limit = int(*q.Limit)
	}
	return skip, limit, nil
}
