package handlers

import (
	"net/http"
	"regexp"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tutorial-service/internal/api/dto"
	"github.com/spec-kit/tutorial-service/internal/domain"
	"github.com/spec-kit/tutorial-service/internal/service"
	"github.com/spec-kit/tutorial-service/internal/validation"
)

var itemsQueryRule = validation.StringRule{
	MinLength: 3,
	MaxLength: 50,
	Pattern:   regexp.MustCompile(`^fixed_query$`),
}

// ItemsHandler serves the catalog routes of the tutorial API.
type ItemsHandler struct {
	catalog   *service.CatalogService
	validator *validation.Validator
}

// NewItemsHandler constructs handler.
func NewItemsHandler(catalog *service.CatalogService, validator *validation.Validator) *ItemsHandler {
	return &ItemsHandler{catalog: catalog, validator: validator}
}

// Root handles GET /.
func (h *ItemsHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"Hello": "World"})
}

// ReadItemHeader handles GET /items-header/{item_id}.
func (h *ItemsHandler) ReadItemHeader(c *fiber.Ctx) error {
	item, err := h.catalog.Get(c.UserContext(), c.Params("item_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"item": json.RawMessage(item.Document)})
}

// ReadItem handles GET /items/{item_id}.
func (h *ItemsHandler) ReadItem(c *fiber.Ctx) error {
	itemID, err := validation.PathInt(c, "item_id", validation.Between(0, 1000))
	if err != nil {
		return err
	}
	var query struct {
		Limit *int64 `query:"limit"`
	}
	if err := validation.BindQuery(c, &query); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"item_id": itemID, "limit": query.Limit})
}

// UpdateItem handles PUT /items/{item_id}, replacing the stored document.
func (h *ItemsHandler) UpdateItem(c *fiber.Ctx) error {
	item, err := h.decodeItem(c)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(item)
	if err != nil {
		return err
	}
	if err := h.catalog.Put(c.UserContext(), c.Params("item_id"), doc); err != nil {
		return err
	}
	return c.JSON(item)
}

// ListItems handles GET /items/.
func (h *ItemsHandler) ListItems(c *fiber.Ctx) error {
	result := fiber.Map{
		"items":      []dto.ItemRef{{ItemID: "Foo"}, {ItemID: "Bar"}},
		"User-Agent": nil,
	}
	if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
		result["User-Agent"] = ua
	}
	if c.Context().QueryArgs().Has("q") {
		q := c.Query("q")
		if err := validation.CheckString("query", "q", q, itemsQueryRule); err != nil {
			return err
		}
		result["q"] = q
	}
	return c.JSON(result)
}

// CreateItem handles POST /items/ and echoes the normalized item.
func (h *ItemsHandler) CreateItem(c *fiber.Ctx) error {
	item, err := h.decodeItem(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(item)
}

// ReadElements handles the deprecated GET /elements/.
func (h *ItemsHandler) ReadElements(c *fiber.Ctx) error {
	return c.JSON([]dto.ItemRef{{ItemID: "Foo"}})
}

// ReadModel handles GET /model/{model_name}.
func (h *ItemsHandler) ReadModel(c *fiber.Ctx) error {
	model, ok := domain.ParseModelName(c.Params("model_name"))
	if !ok {
		return validation.Invalid("path", "model_name",
			"value is not a valid enumeration member; permitted: 'alexnet', 'resnet', 'lenet'")
	}
	return c.JSON(dto.ModelResponse{ModelName: model, Message: model.Message()})
}

func (h *ItemsHandler) decodeItem(c *fiber.Ctx) (*dto.Item, error) {
	var item dto.Item
	if err := h.validator.Decode(c.Body(), validation.SchemaItem, &item); err != nil {
		return nil, err
	}
	item.Normalize()
	return &item, nil
}
