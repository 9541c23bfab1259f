package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stuimpact/stuimpactweb2/api/http/presenter"
	"github.com/stuimpact/stuimpactweb2/pkg/contact"
)

type ContactHandler struct {
	uc contact.UseCase
}

func NewContactHandler(uc contact.UseCase) *ContactHandler { return &ContactHandler{uc: uc} }

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit stores a contact form message.
// @Summary Contact form
// @Tags    contact
// @Accept  json
// @Produce json
// @Param   input body contactRequest true "contact form"
// @Success 200 {object} presenter.MessageResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /contact [post]
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	_, err := h.uc.Submit(c.UserContext(), req.Name, req.Email, req.Message)
	switch {
	case err == nil:
		return presenter.Message(c, http.StatusOK, "Contact information saved successfully")
	case errors.Is(err, contact.ErrMissingFields):
		return presenter.Error(c, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, contact.ErrInvalidEmail):
		return presenter.Error(c, http.StatusBadRequest, "Invalid email address")
	default:
		return presenter.Error(c, http.StatusInternalServerError, "Error saving contact information")
	}
}
