package controller

import (
	"casechat-be/internal/dto"
	"casechat-be/internal/pkg/serverutils"
	"casechat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	IssueUploadURL(ctx *fiber.Ctx) error
	PutObject(ctx *fiber.Ctx) error
}

type uploadController struct {
	uploadService service.IUploadService
}

func NewUploadController(uploadService service.IUploadService) IUploadController {
	return &uploadController{
		uploadService: uploadService,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload/v1")
	h.Post("url", c.IssueUploadURL)
	h.Put("object/+", c.PutObject)
}

func (c *uploadController) IssueUploadURL(ctx *fiber.Ctx) error {
	actorId := ctx.Locals("actor_id").(string)

	var req dto.IssueUploadURLRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.uploadService.IssueUploadURL(ctx.Context(), actorId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success issue upload url", res))
}

// PutObject receives the raw document bytes for a previously issued ticket.
func (c *uploadController) PutObject(ctx *fiber.Ctx) error {
	actorId := ctx.Locals("actor_id").(string)

	key := ctx.Params("+")
	if key == "" {
		return serverutils.NewValidationError("missing object key")
	}

	data := ctx.Body()
	if len(data) == 0 {
		return serverutils.NewValidationError("empty request body")
	}

	if err := c.uploadService.StoreObject(ctx.Context(), actorId, key, data); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success store object", nil))
}
