package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-portal/internal/api/dto"
	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/domain"
	"github.com/spec-kit/school-portal/internal/service"
	apperrors "github.com/spec-kit/school-portal/pkg/util"
)

// ContactsHandler exposes the school directory.
type ContactsHandler struct {
	directory *service.DirectoryService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(directory *service.DirectoryService) *ContactsHandler {
	return &ContactsHandler{directory: directory}
}

// List handles GET /contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}

	contacts, err := h.directory.ListContacts(c.UserContext(), identity)
	if err != nil {
		return err
	}

	out := make([]dto.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, contactResponse(contact))
	}
	return c.JSON(fiber.Map{"contacts": out})
}

// Create handles POST /contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}

	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact := contactFromRequest(req)
	if err := h.directory.CreateContact(c.UserContext(), identity, contact); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"contact": contactResponse(*contact)})
}

// Update handles PUT /contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}

	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact := contactFromRequest(req)
	contact.ID = c.Params("id")
	if err := h.directory.UpdateContact(c.UserContext(), identity, contact); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"contact": contactResponse(*contact)})
}

// Delete handles DELETE /contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}

	if err := h.directory.DeleteContact(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func contactFromRequest(req dto.ContactRequest) *domain.Contact {
	return &domain.Contact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Kind:  domain.ContactKind(req.Kind),
		Notes: req.Notes,
	}
}

func contactResponse(contact domain.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:        contact.ID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Kind:      string(contact.Kind),
		Notes:     contact.Notes,
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	}
}
