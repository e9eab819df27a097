package handlers

import (
	"embed"
	"html/template"
)

//go:embed assets/openapi.json assets/templates/*.html
var assets embed.FS

func loadTemplates() (*template.Template, error) {
	return template.ParseFS(assets, "assets/templates/*.html")
}

func openAPIDocument() ([]byte, error) {
	return assets.ReadFile("assets/openapi.json")
}
