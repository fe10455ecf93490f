package router

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"tourism_marketplace/config"
	"tourism_marketplace/constants"
	"tourism_marketplace/handler"
	"tourism_marketplace/helper"
	"tourism_marketplace/middleware"
	"tourism_marketplace/model"
	"tourism_marketplace/validate"
)

func SetupRoutes(app *fiber.App, h *handler.Handler, tokens *helper.TokenIssuer, cfg config.Config) {
	app.Static(cfg.UploadURLPrefix, cfg.UploadDir)

	protected := middleware.Protected(tokens)
	admin := middleware.RequireRoles(constants.ROLE_ADMIN)
	gate := middleware.RequireRoles(constants.ROLE_ADMIN, constants.ROLE_STAFF)

	app.Get("/payment/response", h.PaymentResponse)

	ws := app.Group("/ws")
	ws.Use(func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/sectors/:id", websocket.New(h.SectorStream))

	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", validate.Body[model.RegisterInput](), h.Register)
	auth.Post("/login", validate.Body[model.LoginInput](), h.Login)
	auth.Post("/refresh-token", h.RefreshToken)
	auth.Get("/me", protected, h.Me)

	department := v1.Group("/departments")
	department.Get("/", h.ListDepartments)
	department.Get("/:id", validate.GetById("id"), h.GetDepartment)
	department.Post("/", protected, admin, validate.Body[model.DepartmentInput](), h.CreateDepartment)
	department.Put("/:id", protected, admin, validate.GetById("id"), validate.Body[model.DepartmentInput](), h.UpdateDepartment)
	department.Delete("/:id", protected, admin, validate.GetById("id"), h.DeleteDepartment)

	city := v1.Group("/cities")
	city.Get("/", validate.Query[model.FilterCity](), h.ListCities)
	city.Get("/department/:id", validate.GetById("id"), h.ListCitiesByDepartment)
	city.Get("/:id", validate.GetById("id"), h.GetCity)
	city.Post("/", protected, admin, validate.Body[model.CityInput](), h.CreateCity)
	city.Put("/:id", protected, admin, validate.GetById("id"), validate.Body[model.CityInput](), h.UpdateCity)
	city.Delete("/:id", protected, admin, validate.GetById("id"), h.DeleteCity)

	category := v1.Group("/categories")
	category.Get("/", h.ListCategories)
	category.Get("/:id", validate.GetById("id"), h.GetCategory)
	category.Post("/", protected, admin, validate.Body[model.CategoryInput](), h.CreateCategory)
	category.Put("/:id", protected, admin, validate.GetById("id"), validate.Body[model.CategoryInput](), h.UpdateCategory)
	category.Delete("/:id", protected, admin, validate.GetById("id"), h.DeleteCategory)

	attraction := v1.Group("/attractions")
	attraction.Get("/", validate.Query[model.FilterAttraction](), h.ListAttractions)
	attraction.Get("/:idOrSlug", h.GetAttraction)
	attraction.Post("/", protected, admin, validate.Body[model.CreateAttractionInput](), h.CreateAttraction)
	attraction.Put("/:id", protected, admin, validate.GetById("id"), validate.Body[model.UpdateAttractionInput](), h.UpdateAttraction)
	attraction.Delete("/:id", protected, admin, validate.GetById("id"), h.DeleteAttraction)
	attraction.Post("/:id/image", protected, admin, validate.GetById("id"), h.UploadAttractionImage)

	sector := v1.Group("/sectors")
	sector.Get("/attraction/:id", validate.GetById("id"), h.ListSectorsByAttraction)
	sector.Get("/:id", validate.GetById("id"), h.GetSector)
	sector.Get("/:id/capacity", validate.GetById("id"), h.SectorCapacity)
	sector.Get("/:id/price-history", protected, admin, validate.GetById("id"), h.SectorPriceHistory)
	sector.Post("/", protected, admin, validate.Body[model.CreateSectorInput](), h.CreateSector)
	sector.Put("/:id", protected, admin, validate.GetById("id"), validate.Body[model.UpdateSectorInput](), h.UpdateSector)
	sector.Delete("/:id", protected, admin, validate.GetById("id"), h.DeleteSector)

	transaction := v1.Group("/transactions", protected)
	transaction.Post("/create-pending", validate.Body[model.CreatePendingInput](), h.CreatePendingTransaction)
	transaction.Post("/initiate", validate.Body[model.PurchaseInput](), h.InitiatePayment)
	transaction.Get("/", admin, validate.Query[model.FilterTransaction](), h.ListTransactions)
	transaction.Get("/me", validate.Query[model.FilterTransaction](), h.MyTransactions)
	transaction.Get("/gateway/:gatewayId", h.GetTransaction)
	transaction.Post("/gateway/:gatewayId/reconcile", h.ReconcileTransaction)
	transaction.Post("/gateway/:gatewayId/issue", h.IssueTransactionTickets)

	ticket := v1.Group("/ticket", protected)
	ticket.Post("/issue", gate, validate.Body[model.IssueTicketsInput](), h.IssueTickets)
	ticket.Post("/verify", gate, validate.Body[model.VerifyTicketInput](), h.VerifyTicket)
	ticket.Get("/me", validate.Query[model.FilterTicketInput](), h.MyTickets)
	ticket.Get("/", admin, validate.Query[model.FilterTicketInput](), h.ListTickets)
	ticket.Get("/:id", validate.GetById("id"), h.GetTicket)
	ticket.Get("/:id/qr", validate.GetById("id"), h.TicketQR)
	ticket.Get("/:id/payload", validate.GetById("id"), h.TicketPayload)
	ticket.Patch("/:id/use", gate, validate.GetById("id"), h.UseTicket)
	ticket.Patch("/:id/cancel", admin, validate.GetById("id"), h.CancelTicket)
	ticket.Delete("/:id", admin, validate.GetById("id"), h.DeleteTicket)

	favorite := v1.Group("/favorites", protected)
	favorite.Get("/", h.ListFavorites)
	favorite.Post("/", validate.Body[model.FavoriteInput](), h.AddFavorite)
	favorite.Delete("/:attractionId", validate.GetById("attractionId"), h.RemoveFavorite)

	report := v1.Group("/reports", protected, admin)
	report.Get("/attendance", h.AttendanceReport)
	report.Get("/sales", h.SalesReport)

	user := v1.Group("/users", protected, admin)
	user.Get("/", validate.Query[model.FilterUser](), h.ListUsers)
	user.Patch("/:id/active", validate.GetById("id"), validate.Body[model.ActiveUserInput](), h.SetUserActive)
}
