package routes

import (
	"github.com/Mandeep1904/flight-price-prediction/pkg/modelinfo"
	"github.com/gofiber/fiber/v2"
)

func ModelInfoRouter(router fiber.Router, env *Env) {
	router.Get("/columns.csv", env.getColumnsCSV)
}

type infoPage struct {
	ModelInfo *modelinfo.ModelInfo
	Bars      []modelinfo.Bar
}

func (e *Env) getColumnsCSV(c *fiber.Ctx) error {
	data, err := e.ModelInfo.ColumnsCSV()
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="dataset_columns.csv"`)
	c.Type("csv")

	return c.Send(data)
}
