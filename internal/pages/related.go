package pages

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Link is a cross-reference to another generated page.
type Link struct {
	Title string
	Name  string
}

var (
	architectureLinks = []Link{
		{Title: "Domain Model", Name: "senzu-ai-class-diagram"},
		{Title: "Deployment Architecture", Name: "senzu-ai-deployment-diagram"},
		{Title: "Database Schema", Name: "senzu-ai-database-schema"},
	}
	flowLinks = []Link{
		{Title: "Backend Architecture", Name: "senzu-ai-backend-architecture"},
		{Title: "Service Interfaces", Name: "senzu-ai-service-interfaces"},
	}
	classLinks = []Link{
		{Title: "Database Schema", Name: "senzu-ai-database-schema"},
		{Title: "Service Interfaces", Name: "senzu-ai-service-interfaces"},
	}
)

// Related picks the fixed peer links for a diagram from keywords in its name.
// Matching is case-insensitive and the first matching category wins:
// "architecture", then "sequence" or "flow", then "class".
func Related(name string) []Link {
	folded := cases.Fold().String(name)
	switch {
	case strings.Contains(folded, "architecture"):
		return slices.Clone(architectureLinks)
	case strings.Contains(folded, "sequence"), strings.Contains(folded, "flow"):
		return slices.Clone(flowLinks)
	case strings.Contains(folded, "class"):
		return slices.Clone(classLinks)
	default:
		return nil
	}
}
