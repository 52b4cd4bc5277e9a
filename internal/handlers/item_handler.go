package handlers

import (
	"mime/multipart"
	"strings"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ItemHandler struct {
	itemService *services.ItemService
}

func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	image, closeImage, err := imageUpload(c)
	if err != nil {
		return badRequest(c, "Invalid image upload")
	}
	defer closeImage()

	item, err := h.itemService.Create(c.UserContext(), userID, services.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Type:        req.Type,
		Image:       image,
	})
	if err != nil {
		return respondError(c, "create_report", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ItemResponse{
		Message: "Item report created",
		Item:    item,
	})
}

func (h *ItemHandler) ListAll(c *fiber.Ctx) error {
	items, err := h.itemService.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, "list_reports", err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) ListLost(c *fiber.Ctx) error {
	return h.listByType(c, models.ItemTypeLost)
}

func (h *ItemHandler) ListFound(c *fiber.Ctx) error {
	return h.listByType(c, models.ItemTypeFound)
}

func (h *ItemHandler) listByType(c *fiber.Ctx, itemType string) error {
	items, err := h.itemService.ListByType(c.UserContext(), itemType)
	if err != nil {
		return respondError(c, "list_reports", err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.itemService.ListByOwner(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "list_my_reports", err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) Get(c *fiber.Ctx) error {
	id, ok := reportID(c, "id")
	if !ok {
		return respondError(c, "get_report", services.ErrReportNotFound)
	}

	item, err := h.itemService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, "get_report", err)
	}
	return c.JSON(dto.ItemResponse{Item: item})
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := reportID(c, "id")
	if !ok {
		return respondError(c, "update_report", services.ErrReportNotFound)
	}

	var req dto.UpdateItemRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	image, closeImage, err := imageUpload(c)
	if err != nil {
		return badRequest(c, "Invalid image upload")
	}
	defer closeImage()

	patch := services.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}
	item, err := h.itemService.Update(c.UserContext(), id, userID, patch, image)
	if err != nil {
		return respondError(c, "update_report", err)
	}

	return c.JSON(dto.ItemResponse{
		Message: "Item report updated",
		Item:    item,
	})
}

func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := reportID(c, "id")
	if !ok {
		return respondError(c, "delete_report", services.ErrReportNotFound)
	}

	if err := h.itemService.Delete(c.UserContext(), id, userID); err != nil {
		return respondError(c, "delete_report", err)
	}

	return c.JSON(dto.StatusResponse{Message: "Item report deleted"})
}

// reportID parses a path id. A malformed id cannot match any record.
func reportID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	return id, err == nil
}

// imageUpload returns the optional "image" file of a multipart request.
// The returned close func is always safe to call.
func imageUpload(c *fiber.Ctx) (*services.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, err
	}
	files := form.File["image"]
	if len(files) == 0 {
		return nil, noop, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return uploadFrom(fh, f), func() { f.Close() }, nil
}

func uploadFrom(fh *multipart.FileHeader, f multipart.File) *services.Upload {
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
}
