package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stuimpact/stuimpactweb2/api/http/presenter"
	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
)

type OpportunityHandler struct {
	uc opportunity.UseCase
}

func NewOpportunityHandler(uc opportunity.UseCase) *OpportunityHandler {
	return &OpportunityHandler{uc: uc}
}

// Get returns one catalog entry.
// @Summary Get opportunity
// @Tags    opportunities
// @Produce json
// @Param   id path string true "opportunity id"
// @Success 200 {object} opportunity.Opportunity
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /opportunities/{id} [get]
func (h *OpportunityHandler) Get(c *fiber.Ctx) error {
	o, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, opportunity.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "opportunity not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to load opportunity")
	}
	return presenter.JSON(c, http.StatusOK, o)
}

type saveOpportunityRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ApplyURL    string   `json:"applyUrl"`
	ImageURL    string   `json:"imageUrl"`
	Type        string   `json:"type"`
	Prestige    string   `json:"prestige"`
	Tags        []string `json:"tags"`
}

// Save creates or replaces a catalog entry.
// @Summary Upsert opportunity
// @Tags    opportunities
// @Accept  json
// @Produce json
// @Param   input body saveOpportunityRequest true "catalog entry; tags must be interest or grade tags"
// @Security BearerAuth
// @Success 201 {object} opportunity.Opportunity
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /opportunities [post]
func (h *OpportunityHandler) Save(c *fiber.Ctx) error {
	var req saveOpportunityRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	saved, err := h.uc.Save(c.UserContext(), opportunity.Opportunity{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		ApplyURL:    req.ApplyURL,
		ImageURL:    req.ImageURL,
		Type:        req.Type,
		Prestige:    req.Prestige,
		Tags:        req.Tags,
	})
	if err != nil {
		var ve opportunity.ErrValidation
		if errors.As(err, &ve) {
			return presenter.Error(c, http.StatusBadRequest, ve.Error())
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to save opportunity")
	}
	return presenter.JSON(c, http.StatusCreated, saved)
}
