package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oss-values/issue-stats/internal/domain"
)

func TestKeywordClassifier(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		body     string
		expected domain.Category
	}{
		{
			name:     "respectfulness keyword in body",
			title:    "Maintainer communication",
			body:     "Some replies here are plain rude and it drives newcomers away.",
			expected: domain.Respectfulness,
		},
		{
			name:     "freedom keyword in title",
			title:    "Let the user choose the theme",
			body:     "Hardcoding the palette is too restrictive.",
			expected: domain.Freedom,
		},
		{
			name:     "broadmindedness keyword",
			title:    "Docs",
			body:     "We should welcome diverse perspectives in the style guide.",
			expected: domain.Broadmindedness,
		},
		{
			name:     "social power keyword",
			title:    "Release process feels like a gatekeeper bottleneck",
			body:     "",
			expected: domain.SocialPower,
		},
		{
			name:     "equity keyword",
			title:    "Review queue",
			body:     "The triage order is unfair to first-time contributors.",
			expected: domain.EquityEquality,
		},
		{
			name:     "environment keyword",
			title:    "CI energy consumption",
			body:     "Nightly builds burn a lot of compute.",
			expected: domain.Environment,
		},
		{
			name:     "matching is case insensitive",
			title:    "RUDE comments on my PR",
			body:     "",
			expected: domain.Respectfulness,
		},
		{
			name:     "priority order breaks multi-category matches",
			title:    "rude gatekeeper",
			body:     "freedom",
			expected: domain.Respectfulness,
		},
		{
			name:     "no keyword falls back to unknown",
			title:    "Button misaligned on Safari",
			body:     "See attached screenshot.",
			expected: domain.Unknown,
		},
		{
			name:     "empty input falls back to unknown",
			title:    "",
			body:     "",
			expected: domain.Unknown,
		},
	}

	classifier := NewKeywordClassifier()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifier.Classify(context.Background(), tc.title, tc.body)
			assert.Equal(t, tc.expected, got)
		})
	}
}
