package search

import (
	"strings"

	"github.com/hyperjump/shiori/internal/models"
)

// ProcessQuery trims the query text and validates it, filling in defaultLimit.
func ProcessQuery(query *models.SearchQuery, defaultLimit int) error {
	query.Query = strings.Join(strings.Fields(query.Query), " ")
	return query.Validate(defaultLimit)
}
