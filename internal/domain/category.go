package domain

import "strings"

// Category is one member of the fixed taxonomy of social/organizational
// values that issues are classified against.
type Category string

const (
	Respectfulness  Category = "respectfulness"
	Freedom         Category = "freedom"
	Broadmindedness Category = "broadmindedness"
	SocialPower     Category = "social power"
	EquityEquality  Category = "equity & equality"
	Environment     Category = "environment"
	// Unknown is the fallback for text that matches no category and for
	// classification failures.
	Unknown Category = "unknown"
)

// Categories returns the full taxonomy in the priority order used by the
// keyword classifier. Unknown is always last.
func Categories() []Category {
	return []Category{
		Respectfulness,
		Freedom,
		Broadmindedness,
		SocialPower,
		EquityEquality,
		Environment,
		Unknown,
	}
}

// ParseCategory maps free text onto the taxonomy. The boolean is false when
// the text is not a known category name; the returned value is Unknown then.
func ParseCategory(text string) (Category, bool) {
	candidate := Category(strings.ToLower(strings.TrimSpace(text)))
	for _, known := range Categories() {
		if candidate == known {
			return known, true
		}
	}
	return Unknown, false
}

// Keywords holds the fixed keyword list of each named category. Unknown has
// no keywords; it is only ever produced as a fallback.
var Keywords = map[Category][]string{
	Respectfulness: {
		"code of conduct", "polite", "rude",
		"respectful communication", "constructive feedback", "collaboration", "avoiding offensive language",
		"respectful tone", "inclusive language", "empathy", "patience", "mutual respect", "professionalism",
		"kindness", "courtesy", "positive interaction", "respectful disagreement", "active listening",
		"avoiding toxicity", "respectful code reviews", "respecting time", "respecting contributions",
		"respecting diversity",
	},
	Freedom: {
		"freedom", "user choose", "sovereign",
		"freedom to contribute", "freedom to fork", "freedom to modify code", "freedom of choice",
		"open source", "open collaboration", "autonomy", "independence", "self-governance",
		"freedom of expression", "freedom to experiment", "freedom to innovate", "freedom to distribute",
		"freedom to use", "freedom to decide", "freedom to customize", "freedom to participate",
		"freedom to criticize", "freedom to collaborate", "freedom to choose tools",
	},
	Broadmindedness: {
		"diversity", "diverse", "unconventional",
		"openness to new ideas", "acceptance of different approaches", "inclusivity", "global collaboration",
		"multiculturalism", "flexibility", "adaptability", "creativity", "innovation", "non-conformity",
		"open-mindedness", "embracing change", "diverse perspectives", "cross-cultural collaboration",
		"tolerance", "respect for differences", "unconventional solutions", "alternative approaches",
		"out-of-the-box thinking", "embracing diversity",
	},
	SocialPower: {
		"central authority", "gatekeeper", "monopoly",
		"maintainer authority", "control over decisions", "influence on project direction", "hierarchy",
		"leadership", "governance", "decision-making power", "power dynamics", "contributor hierarchy",
		"power to approve", "power to reject", "power to define standards", "power to set priorities",
		"power to moderate", "power to manage", "power to influence", "power to govern", "power to shape",
		"power to control", "power to lead",
	},
	EquityEquality: {
		"unfair", "fairness", "justice",
		"equal opportunities", "fair treatment", "equal voice", "fair distribution of tasks", "inclusivity",
		"equal access", "fair recognition", "equal representation", "fair contribution", "equal rights",
		"equal participation", "fair rewards", "equal credit", "fair policies", "equal support",
		"fair evaluation", "equal mentorship", "fair collaboration", "equal decision-making", "fair compensation",
	},
	Environment: {
		"climate change", "energy consumption", "wildlife",
		"sustainability", "eco-friendly", "resource efficiency", "carbon footprint", "green computing",
		"energy-efficient code", "renewable energy", "reducing waste", "minimizing impact",
		"environmental awareness", "sustainable practices", "eco-conscious development",
		"low-energy algorithms", "green infrastructure", "reducing emissions", "sustainable hardware",
		"energy optimization", "environmental responsibility", "eco-friendly tools", "green policies",
	},
	Unknown: {},
}
