package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Candidate is the loosely-typed recipe shape as returned by the
// generative model, before sanitization.
type Candidate struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Cuisine       string         `json:"cuisine"`
	PrepTime      FlexNumber     `json:"prepTime"`
	CookTime      FlexNumber     `json:"cookTime"`
	Servings      FlexNumber     `json:"servings"`
	Ingredients   []Ingredient   `json:"ingredients"`
	Instructions  []Instruction  `json:"instructions"`
	Nutrition     *Nutrition     `json:"nutrition"`
	Tips          []string       `json:"tips"`
	Substitutions []Substitution `json:"substitutions"`
}

// StripCodeFences removes triple-backtick markers (optionally labeled
// json) that models like to wrap responses in, and trims whitespace.
func StripCodeFences(text string) string {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	return strings.TrimSpace(clean)
}

// ParseCandidate turns raw model output into a Candidate. The raw text
// must contain a single JSON object, optionally fenced.
func ParseCandidate(raw string) (*Candidate, error) {
	clean := StripCodeFences(raw)
	if !strings.HasPrefix(clean, "{") {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrGenerationParse)
	}

	var c Candidate
	if err := json.Unmarshal([]byte(clean), &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationParse, err)
	}

	return &c, nil
}

// ParseSuggestions turns raw model output into the suggestion list. A
// structurally malformed response fails the whole call; there are no
// partial results.
func ParseSuggestions(raw string) ([]Suggestion, error) {
	clean := StripCodeFences(raw)
	if !strings.HasPrefix(clean, "[") {
		return nil, fmt.Errorf("%w: response is not a JSON array", ErrGenerationParse)
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(clean), &suggestions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationParse, err)
	}

	return suggestions, nil
}
