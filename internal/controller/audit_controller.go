package controller

import (
	"casechat-be/internal/dto"
	"casechat-be/internal/pkg/serverutils"
	"casechat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuditController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type auditController struct {
	auditService service.IAuditService
}

func NewAuditController(auditService service.IAuditService) IAuditController {
	return &auditController{
		auditService: auditService,
	}
}

func (c *auditController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/audit/v1")
	h.Get("", c.List)
}

// List serves verified ledger entries. A broken chain surfaces as
// CHAIN_INTEGRITY_VIOLATION via the error handler instead of partial data.
func (c *auditController) List(ctx *fiber.Ctx) error {
	var req dto.ListAuditRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	res, err := c.auditService.List(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list audit entries", res))
}
