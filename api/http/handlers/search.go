package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/stuimpact/stuimpactweb2/api/http/presenter"
	"github.com/stuimpact/stuimpactweb2/pkg/logger"
	"github.com/stuimpact/stuimpactweb2/pkg/metrics"
	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

type SearchHandler struct {
	uc  opportunity.UseCase
	log zerolog.Logger
}

func NewSearchHandler(uc opportunity.UseCase) *SearchHandler {
	return &SearchHandler{uc: uc, log: logger.Component("http.search")}
}

type searchRequest struct {
	Interest string `json:"interest" example:"BIOLOGY COMPUTER SCIENCE"`
	Grade    string `json:"grade" example:"FRESHMEN"`
	Location string `json:"location,omitempty"`
	Page     int    `json:"page" example:"1"`
}

// Search returns one page of opportunities matching every requested tag.
// @Summary Search opportunities
// @Description interest is the space-joined list of interest tags; grade is 9-12 or FRESHMEN..SENIORS.
// @Tags    search
// @Accept  json
// @Produce json
// @Param   input body searchRequest true "search filters"
// @Success 200 {object} opportunity.Page
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /search [post]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		metrics.SearchRequests.WithLabelValues("invalid").Inc()
		return presenter.Error(c, http.StatusBadRequest, "Invalid request.")
	}
	return h.respond(c, req.Interest, req.Grade, req.Location, normalizePage(req.Page))
}

// List is the query-string form of Search, for shareable links.
// @Summary Search opportunities (query string)
// @Tags    search
// @Produce json
// @Param   interest query string true  "space-joined interest tags"
// @Param   grade    query string true  "grade"
// @Param   location query string false "location hint"
// @Param   page     query int    false "page number, 1-based"
// @Success 200 {object} opportunity.Page
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /opportunities [get]
func (h *SearchHandler) List(c *fiber.Ctx) error {
	return h.respond(c, c.Query("interest"), c.Query("grade"), c.Query("location"), pageFromQuery(c))
}

func (h *SearchHandler) respond(c *fiber.Ctx, interest, grade, location string, page int) error {
	crit, err := search.ParseQuery(interest, grade)
	if err != nil {
		return h.fail(c, err)
	}
	crit = crit.WithLocation(strings.TrimSpace(location))

	result, err := h.uc.Search(c.UserContext(), crit, page)
	if err != nil {
		return h.fail(c, err)
	}
	metrics.SearchRequests.WithLabelValues("ok").Inc()
	return presenter.JSON(c, http.StatusOK, result)
}

func (h *SearchHandler) fail(c *fiber.Ctx, err error) error {
	var ve *search.ValidationError
	if errors.As(err, &ve) {
		metrics.SearchRequests.WithLabelValues("invalid").Inc()
		return presenter.Error(c, http.StatusBadRequest, ve.Message())
	}
	metrics.SearchRequests.WithLabelValues("error").Inc()
	h.log.Error().Err(err).Msg("search failed")
	return presenter.Error(c, http.StatusInternalServerError, "Failed to fetch opportunities.")
}
