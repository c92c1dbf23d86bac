package handler

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, search *SearchHandler, admin *AdminHandler) {
	api := e.Group("/api/v1")
	api.GET("/search/state", search.State)
	api.POST("/search", search.Submit)
	api.GET("/blockseats/list", search.List)
	api.GET("/blockseats/list/:id", search.Checkout)

	if admin != nil {
		api.GET("/admin/:resource", admin.List)
		api.PATCH("/admin/users/:id", admin.SetUserStatus)
		api.DELETE("/admin/users/:id", admin.DeleteUser)
		api.PATCH("/admin/ticket-requests/:id", admin.SetTicketRequestStatus)
	}

	e.GET("/health", HealthHandler)
}
