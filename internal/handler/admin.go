package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/blockseats/internal/dataaccess"
	"github.com/dharmasatrya/blockseats/internal/listctl"
	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/requestid"
)

// listParams are consumed by the list route itself; every other query
// parameter is forwarded to the backend as a filter.
var listParams = map[string]bool{"search": true, "tab": true, "cursor": true, "limit": true}

type AdminHandler struct {
	client   *dataaccess.Client
	pageSize int
}

func NewAdminHandler(client *dataaccess.Client, pageSize int) *AdminHandler {
	if pageSize <= 0 {
		pageSize = listctl.DefaultPageSize
	}
	return &AdminHandler{client: client, pageSize: pageSize}
}

// List proxies one page of an admin list.
func (h *AdminHandler) List(c echo.Context) error {
	resource := c.Param("resource")
	if !dataaccess.KnownResource(resource) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "unknown_resource",
			Message: "No admin list named " + strconv.Quote(resource),
			Code:    http.StatusNotFound,
		})
	}

	params := c.QueryParams()
	q := models.ListQuery{
		SearchText: params.Get("search"),
		Tab:        params.Get("tab"),
		PageSize:   h.pageSize,
		Filters:    map[string]string{},
	}
	if n, err := strconv.Atoi(params.Get("limit")); err == nil && n > 0 {
		q.PageSize = n
	}
	for key := range params {
		if !listParams[key] {
			q.Filters[key] = params.Get(key)
		}
	}

	ctx := requestid.With(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))
	cursor := params.Get("cursor")

	switch resource {
	case dataaccess.ResourceUsers:
		return writeEnvelope(c, dataaccess.FetchPage[models.User](ctx, h.client, resource, q, cursor))
	case dataaccess.ResourceTeamMembers:
		return writeEnvelope(c, dataaccess.FetchPage[models.TeamMember](ctx, h.client, resource, q, cursor))
	case dataaccess.ResourceTicketRequests:
		return writeEnvelope(c, dataaccess.FetchPage[models.TicketRequest](ctx, h.client, resource, q, cursor))
	default:
		return writeEnvelope(c, dataaccess.FetchPage[models.Ticket](ctx, h.client, resource, q, cursor))
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return badStatus(c)
	}
	return writeEnvelope(c, h.client.SetUserStatus(c.Request().Context(), c.Param("id"), req.Status))
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	return writeEnvelope(c, h.client.DeleteUser(c.Request().Context(), c.Param("id")))
}

func (h *AdminHandler) SetTicketRequestStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return badStatus(c)
	}
	return writeEnvelope(c, h.client.SetTicketRequestStatus(c.Request().Context(), c.Param("id"), req.Status))
}

func badStatus(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: "A non-empty status is required",
		Code:    http.StatusBadRequest,
	})
}

// writeEnvelope relays a backend envelope. Failures with field errors
// become 422, other failures 502.
func writeEnvelope[T any](c echo.Context, env models.Envelope[T]) error {
	status := http.StatusOK
	if !env.Success {
		status = http.StatusBadGateway
		if len(env.ValidationErrors) > 0 {
			status = http.StatusUnprocessableEntity
		}
	}
	return c.JSON(status, env)
}
