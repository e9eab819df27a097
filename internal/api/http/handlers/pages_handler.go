package handlers

import (
	"bufio"
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

const (
	videoChunk  = "some fake video bytes"
	videoChunks = 10
)

// PagesHandler renders HTML pages and the streaming demo.
type PagesHandler struct {
	templates *template.Template
}

// NewPagesHandler parses the embedded templates.
func NewPagesHandler() (*PagesHandler, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &PagesHandler{templates: tmpl}, nil
}

// ItemPage handles GET /pages/items/{id}.
func (h *PagesHandler) ItemPage(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "item.html", struct{ ID string }{c.Params("id")}); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// Video handles GET /video, writing the body in flushed chunks.
func (h *PagesHandler) Video(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "video/mp4")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for i := 0; i < videoChunks; i++ {
			if _, err := w.WriteString(videoChunk); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
