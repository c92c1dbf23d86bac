package dataaccess

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/dharmasatrya/blockseats/internal/listctl"
	"github.com/dharmasatrya/blockseats/internal/models"
)

// Admin list resources served under /admin/{resource}.
const (
	ResourceUsers           = "users"
	ResourceTeamMembers     = "team-members"
	ResourceTicketRequests  = "ticket-requests"
	ResourceTicketsOverview = "tickets-overview"
)

func KnownResource(resource string) bool {
	switch resource {
	case ResourceUsers, ResourceTeamMembers, ResourceTicketRequests, ResourceTicketsOverview:
		return true
	}
	return false
}

func adminEndpoint(resource string) string {
	return "admin/" + resource
}

// FetchPage loads one cursor page of an admin resource. An empty cursor
// requests the first page.
func FetchPage[T any](ctx context.Context, c *Client, resource string, q models.ListQuery, cursor string) models.Envelope[models.ListPage[T]] {
	if !KnownResource(resource) {
		return models.Fail[models.ListPage[T]]("unknown list " + strconv.Quote(resource))
	}

	params := url.Values{}
	if q.SearchText != "" {
		params.Set("search", q.SearchText)
	}
	if q.Tab != "" {
		params.Set("tab", q.Tab)
	}
	if q.PageSize > 0 {
		params.Set("limit", strconv.Itoa(q.PageSize))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := q.Filters[k]; v != "" {
			params.Set(k, v)
		}
	}

	path := "/admin/" + resource
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	env := call[models.ListPage[T]](ctx, c, http.MethodGet, adminEndpoint(resource), path, nil)
	if env.Success && env.Results.Items == nil {
		env.Results.Items = []T{}
	}
	return env
}

// ListSource adapts one admin resource to listctl.Fetcher.
type ListSource[T any] struct {
	Client   *Client
	Resource string
}

var (
	_ listctl.Fetcher[models.User]          = ListSource[models.User]{}
	_ listctl.Fetcher[models.TeamMember]    = ListSource[models.TeamMember]{}
	_ listctl.Fetcher[models.TicketRequest] = ListSource[models.TicketRequest]{}
)

func (s ListSource[T]) FetchPage(ctx context.Context, q models.ListQuery, cursor string) models.Envelope[models.ListPage[T]] {
	return FetchPage[T](ctx, s.Client, s.Resource, q, cursor)
}

func (c *Client) SetUserStatus(ctx context.Context, id, status string) models.Envelope[models.User] {
	body := map[string]string{"status": status}
	return call[models.User](ctx, c, http.MethodPatch, adminEndpoint(ResourceUsers), "/admin/users/"+url.PathEscape(id), body)
}

func (c *Client) DeleteUser(ctx context.Context, id string) models.Envelope[struct{}] {
	return call[struct{}](ctx, c, http.MethodDelete, adminEndpoint(ResourceUsers), "/admin/users/"+url.PathEscape(id), nil)
}

// SetTicketRequestStatus accepts or rejects a seat request.
func (c *Client) SetTicketRequestStatus(ctx context.Context, id, status string) models.Envelope[models.TicketRequest] {
	body := map[string]string{"status": status}
	return call[models.TicketRequest](ctx, c, http.MethodPatch, adminEndpoint(ResourceTicketRequests), "/admin/ticket-requests/"+url.PathEscape(id), body)
}
