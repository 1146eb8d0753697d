package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pos-api/internal/application/dto"
)

// parsePage lee limit/offset del query string con defaults y tope de 100.
func parsePage(c *fiber.Ctx) dto.PageRequest {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	return page
}

// parseDateRange lee from/to del query string (YYYY-MM-DD). El límite
// superior es exclusivo al día siguiente para cubrir la fecha completa.
func parseDateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, perr := time.Parse("2006-01-02", s)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, perr := time.Parse("2006-01-02", s)
		if perr != nil {
			return nil, nil, perr
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}
