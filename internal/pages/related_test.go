package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(links []Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Name)
	}
	return out
}

func TestRelated(t *testing.T) {
	architecture := []string{"senzu-ai-class-diagram", "senzu-ai-deployment-diagram", "senzu-ai-database-schema"}
	flow := []string{"senzu-ai-backend-architecture", "senzu-ai-service-interfaces"}
	class := []string{"senzu-ai-database-schema", "senzu-ai-service-interfaces"}

	tests := []struct {
		name string
		want []string
	}{
		{"senzu-ai-backend-architecture", architecture},
		{"Alpha-ARCHITECTURE", architecture},
		{"architecture-sequence-flow", architecture},
		{"beta-sequence", flow},
		{"senzu-ai-model-deployment-flow", flow},
		{"DataFlow", flow},
		{"sequence-class", flow},
		{"senzu-ai-class-diagram", class},
		{"Subclass", class},
		{"gamma-unrelated", nil},
		{"senzu-ai-database-schema", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Related(tt.name)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestRelatedReturnsCopies(t *testing.T) {
	links := Related("x-architecture")
	links[0].Title = "mutated"
	assert.Equal(t, "Domain Model", Related("x-architecture")[0].Title)
}
