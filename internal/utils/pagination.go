package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flowtrack/flowtrack-api/internal/constants"
)

var (
	ErrInvalidPage  = fmt.Errorf("page must be an integer >= %d", constants.MinPage)
	ErrInvalidLimit = fmt.Errorf("limit must be an integer between %d and %d", constants.MinPageSize, constants.MaxPageSize)
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// TotalPages returns how many pages total items span at this limit.
func (p PaginationParams) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	pages := int(total) / p.Limit
	if int(total)%p.Limit > 0 {
		pages++
	}
	return pages
}

// NewPagination validates page and limit and computes the offset.
// Out-of-range values are rejected rather than clamped.
func NewPagination(page, limit int) (PaginationParams, error) {
	if page < constants.MinPage {
		return PaginationParams{}, ErrInvalidPage
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		return PaginationParams{}, ErrInvalidLimit
	}
	// The offset must fit in an int.
	if page-1 > math.MaxInt/limit {
		return PaginationParams{}, ErrInvalidPage
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}, nil
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) (PaginationParams, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	if err != nil {
		return PaginationParams{}, ErrInvalidPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil {
		return PaginationParams{}, ErrInvalidLimit
	}

	return NewPagination(page, limit)
}

// IsPaginationError reports whether err came from pagination validation.
func IsPaginationError(err error) bool {
	return errors.Is(err, ErrInvalidPage) || errors.Is(err, ErrInvalidLimit)
}
