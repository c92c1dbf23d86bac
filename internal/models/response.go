package models

type SearchMetadata struct {
	TotalResults int   `json:"totalResults"`
	SearchTimeMs int64 `json:"searchTimeMs"`
	CacheHit     bool  `json:"cacheHit"`
}

type LegResult struct {
	Facets  Facets   `json:"facets"`
	Tickets []Ticket `json:"tickets"`
}

type TicketListResponse struct {
	SearchState SearchState    `json:"searchState"`
	Metadata    SearchMetadata `json:"metadata"`
	Departure   LegResult      `json:"departure"`
	Return      *LegResult     `json:"return,omitempty"`
	Message     string         `json:"message,omitempty"`
}

type SearchStateResponse struct {
	SearchState SearchState       `json:"searchState"`
	Errors      map[string]string `json:"errors,omitempty"`
	Query       string            `json:"query"`
}

type SubmitResponse struct {
	Path string `json:"path"`
}

type CheckoutContext struct {
	SearchState       SearchState `json:"searchState"`
	SelectedDeparture string      `json:"selectedDeparture"`
	SelectedReturn    *string     `json:"selectedReturn"`
	Path              string      `json:"path"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}
