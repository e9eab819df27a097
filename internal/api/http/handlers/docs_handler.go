package handlers

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

// DocsHandler serves the OpenAPI document and the two documentation UIs.
type DocsHandler struct {
	title       string
	documentURL string
	document    []byte
	templates   *template.Template
}

// NewDocsHandler loads the embedded OpenAPI document and page templates.
func NewDocsHandler(title string) (*DocsHandler, error) {
	doc, err := openAPIDocument()
	if err != nil {
		return nil, err
	}
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &DocsHandler{title: title, documentURL: "/openapi.json", document: doc, templates: tmpl}, nil
}

// OpenAPI handles GET /openapi.json.
func (h *DocsHandler) OpenAPI(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(h.document)
}

// Swagger handles GET /docs.
func (h *DocsHandler) Swagger(c *fiber.Ctx) error {
	return h.render(c, "swagger.html")
}

// Redoc handles GET /redoc.
func (h *DocsHandler) Redoc(c *fiber.Ctx) error {
	return h.render(c, "redoc.html")
}

func (h *DocsHandler) render(c *fiber.Ctx, name string) error {
	var buf bytes.Buffer
	data := struct{ Title, DocumentURL string }{h.title, h.documentURL}
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
