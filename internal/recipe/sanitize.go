package recipe

import "strings"

// Sanitize coerces a loosely-typed candidate into a schema-conformant
// draft. It is a total function: invalid values become defaults or
// null, never errors. The title is always overwritten with the
// normalized title; identity-bearing fields never come from the model.
func Sanitize(c *Candidate, normalizedTitle string) *Recipe {
	return &Recipe{
		Title:         normalizedTitle,
		Description:   c.Description,
		Category:      coerceEnum(c.Category, Categories, DefaultCategory),
		Cuisine:       coerceEnum(c.Cuisine, Cuisines, DefaultCuisine),
		PrepTime:      c.PrepTime.Int(),
		CookTime:      c.CookTime.Int(),
		Servings:      c.Servings.Int(),
		Ingredients:   sanitizeIngredients(c.Ingredients),
		Instructions:  sanitizeInstructions(c.Instructions),
		Nutrition:     c.Nutrition,
		Tips:          sanitizeStrings(c.Tips),
		Substitutions: sanitizeSubstitutions(c.Substitutions),
	}
}

// coerceEnum matches case-insensitively against the allowed set and
// falls back to the default.
func coerceEnum(value string, allowed []string, fallback string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, v := range allowed {
		if lower == v {
			return v
		}
	}
	return fallback
}

func sanitizeIngredients(in []Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(in))
	for _, ing := range in {
		if strings.TrimSpace(ing.Item) == "" {
			continue
		}
		out = append(out, ing)
	}
	return out
}

func sanitizeInstructions(in []Instruction) []Instruction {
	out := make([]Instruction, 0, len(in))
	for _, step := range in {
		if strings.TrimSpace(step.Instruction) == "" {
			continue
		}
		if step.Step == 0 {
			step.Step = len(out) + 1
		}
		out = append(out, step)
	}
	return out
}

func sanitizeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func sanitizeSubstitutions(in []Substitution) []Substitution {
	out := make([]Substitution, 0, len(in))
	for _, sub := range in {
		if strings.TrimSpace(sub.Original) == "" || len(sub.Alternatives) == 0 {
			continue
		}
		out = append(out, sub)
	}
	return out
}
