package classify

import (
	"context"
	"strings"

	"github.com/oss-values/issue-stats/internal/domain"
)

// KeywordClassifier matches the lower-cased title+body against each
// category's keyword list. The first category in priority order with a
// containment match wins.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the keyword strategy.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(_ context.Context, title, body string) domain.Category {
	text := strings.ToLower(title + " " + body)
	for _, category := range domain.Categories() {
		for _, keyword := range domain.Keywords[category] {
			if strings.Contains(text, keyword) {
				return category
			}
		}
	}
	return domain.Unknown
}
