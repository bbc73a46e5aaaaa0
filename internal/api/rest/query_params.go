package rest

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/commdesk/cts/internal/api/executor"
)

const MAX_PAGE_SIZE = 100

// DATE_ONLY_LAYOUT is the accepted shape of from/to filter values
const DATE_ONLY_LAYOUT = "2006-01-02"

// ListRecordsQueryParams holds query parameters for record listings
// GET /api/v1/emails and GET /api/v1/documents
type ListRecordsQueryParams struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	Direction string `form:"direction"`
	From      string `form:"from"`
	To        string `form:"to"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
}

// ParseListRecordsQuery parses and normalizes listing query parameters
func ParseListRecordsQuery(c *gin.Context) (*executor.ListQuery, error) {
	var params ListRecordsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}

	query := &executor.ListQuery{
		Search:    params.Search,
		Status:    params.Status,
		Direction: params.Direction,
		Page:      params.Page,
		Limit:     params.Limit,
	}

	if params.From != "" {
		from, err := time.Parse(DATE_ONLY_LAYOUT, params.From)
		if err != nil {
			return nil, fmt.Errorf("invalid 'from' date %q, expected YYYY-MM-DD", params.From)
		}
		query.From = &from
	}

	if params.To != "" {
		to, err := time.Parse(DATE_ONLY_LAYOUT, params.To)
		if err != nil {
			return nil, fmt.Errorf("invalid 'to' date %q, expected YYYY-MM-DD", params.To)
		}
		// The filter is inclusive of the whole end day
		endOfDay := to.Add(24*time.Hour - time.Nanosecond)
		query.To = &endOfDay
	}

	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return nil, fmt.Errorf("'from' date %s is after 'to' date %s", params.From, params.To)
	}

	return query, nil
}
