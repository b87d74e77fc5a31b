// Package classify maps issue text onto the fixed value taxonomy. Both
// strategies are total: they always return exactly one category and never an
// error, falling back to the unknown category on any failure.
package classify

import (
	"context"

	"github.com/oss-values/issue-stats/internal/domain"
)

// Strategy names accepted by configuration.
const (
	StrategyKeyword = "keyword"
	StrategyGemini  = "gemini"
)

// Classifier assigns a category to an issue's title and body.
type Classifier interface {
	Classify(ctx context.Context, title, body string) domain.Category
}
