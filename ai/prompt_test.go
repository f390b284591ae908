package ai

import (
	"strings"
	"testing"

	"dira-directory/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildProductPromptEnumeratesCatalog(t *testing.T) {
	prompt := BuildProductPrompt([]models.Product{
		{
			Name:        "Tax Portal",
			Country:     "Estonia",
			Categories:  models.StringList{"govtech", "finance"},
			Website:     "https://tax.example",
			Description: "File taxes online",
		},
		{
			Name:        "Health Registry",
			Country:     "Latvia",
			Categories:  models.StringList{"health"},
			Website:     "https://health.example",
			Description: "Patient records",
		},
	})

	assert.Contains(t, prompt, "1. Tax Portal (Estonia)")
	assert.Contains(t, prompt, "2. Health Registry (Latvia)")
	assert.Contains(t, prompt, "govtech, finance")
	assert.Contains(t, prompt, "https://tax.example")
	assert.NotContains(t, prompt, "{{PRODUCTS}}")
}

func TestBuildProductPromptResponseSections(t *testing.T) {
	prompt := BuildProductPrompt(nil)

	assert.Contains(t, prompt, "## Best Matches")
	assert.Contains(t, prompt, "## Alternative Options")
	assert.Contains(t, prompt, "## No Matches Found")
	assert.Contains(t, prompt, "catalog is currently empty")
}

func TestBuildOpportunityPromptEnumeratesCatalog(t *testing.T) {
	prompt := BuildOpportunityPrompt([]models.Opportunity{
		{
			Title:       "Digitize land registry",
			Type:        models.OpportunityTypeProblem,
			Country:     "Estonia",
			Categories:  models.StringList{"govtech"},
			Description: "Modernize paper records",
			Ministry:    "Ministry of Justice",
			Email:       "digital@justice.example",
		},
	})

	assert.Contains(t, prompt, "1. Digitize land registry [problem] (Estonia)")
	assert.Contains(t, prompt, "Ministry: Ministry of Justice")
	assert.Contains(t, prompt, "Contact: digital@justice.example")
	assert.True(t, strings.Contains(prompt, "## Best Matches"))
	assert.NotContains(t, prompt, "{{PRODUCTS}}")
}

func TestBuildOpportunityPromptSkipsEmptyContactFields(t *testing.T) {
	prompt := BuildOpportunityPrompt([]models.Opportunity{
		{
			Title:       "Frontend engineer",
			Type:        models.OpportunityTypeJob,
			Country:     "Latvia",
			Categories:  models.StringList{"engineering"},
			Description: "Build citizen portals",
		},
	})

	assert.Contains(t, prompt, "1. Frontend engineer [job] (Latvia)")
	assert.NotContains(t, prompt, "Ministry:")
	assert.NotContains(t, prompt, "Contact:")
}
