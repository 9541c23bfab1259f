package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// maxPage bounds the offset a client can make the store skip.
const maxPage = 1000

// normalizePage maps anything below 1 to the first page and clamps the top.
func normalizePage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > maxPage:
		return maxPage
	}
	return page
}

// pageFromQuery reads ?page=, falling back to 1 on absent or garbage input.
func pageFromQuery(c *fiber.Ctx) int {
	v := strings.TrimSpace(c.Query("page"))
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 1
	}
	return normalizePage(n)
}
