package models

import (
	"maps"
	"time"
)

// ListQuery drives every admin list screen.
type ListQuery struct {
	SearchText string            `json:"searchText"`
	Filters    map[string]string `json:"filters,omitempty"`
	Tab        string            `json:"tab,omitempty"`
	PageSize   int               `json:"pageSize,omitempty"`
}

// SameScope reports whether q and o differ only in SearchText.
func (q ListQuery) SameScope(o ListQuery) bool {
	return q.Tab == o.Tab && q.PageSize == o.PageSize && maps.Equal(q.Filters, o.Filters)
}

func (q ListQuery) Equal(o ListQuery) bool {
	return q.SearchText == o.SearchText && q.SameScope(o)
}

func (q ListQuery) Clone() ListQuery {
	out := q
	out.Filters = maps.Clone(q.Filters)
	return out
}

// ListPage is one cursor page. An empty NextCursor marks the last page.
type ListPage[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) ItemID() string { return u.ID }

type TeamMember struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (m TeamMember) ItemID() string { return m.ID }

type TicketRequest struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticketId"`
	RequestedBy string    `json:"requestedBy"`
	Seats       int       `json:"seats"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (r TicketRequest) ItemID() string { return r.ID }
