package routes

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Funcs(template.FuncMap{
			"percent": func(value float64) string {
				return fmt.Sprintf("%.2f%%", value)
			},
			"score": func(value float64) string {
				return fmt.Sprintf("%g", value)
			},
		}).
		ParseFS(templateFS, "templates/*.html"),
)

func render(c *fiber.Ctx, name string, data any) error {
	var buffer bytes.Buffer
	if err := templates.ExecuteTemplate(&buffer, name, data); err != nil {
		return err
	}

	c.Type("html", "utf-8")

	return c.Send(buffer.Bytes())
}
