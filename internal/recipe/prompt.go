package recipe

import (
	"fmt"
	"strings"
)

const recipePromptTemplate = `
You are a professional chef and recipe expert. Generate a detailed recipe for: "%[1]s"

CRITICAL: The "title" field MUST be EXACTLY: "%[1]s" (no changes, no additions like "Classic" or "Easy")

Return ONLY a valid JSON object with this exact structure (no markdown, no explanations):
{
  "title": "%[1]s",
  "description": "Brief 2-3 sentence description of the dish",
  "category": "Must be ONE of these EXACT values: %[2]s",
  "cuisine": "Must be ONE of these EXACT values: %[3]s",
  "prepTime": "Time in minutes (number only)",
  "cookTime": "Time in minutes (number only)",
  "servings": "Number of servings (number only)",
  "ingredients": [
    {
      "item": "ingredient name",
      "amount": "quantity with unit",
      "category": "Protein|Vegetable|Spice|Dairy|Grain|Other"
    }
  ],
  "instructions": [
    {
      "step": 1,
      "title": "Brief step title",
      "instruction": "Detailed step instruction",
      "tip": "Optional cooking tip for this step"
    }
  ],
  "nutrition": {
    "calories": "calories per serving",
    "protein": "grams",
    "carbs": "grams",
    "fat": "grams"
  },
  "tips": [
    "General cooking tip 1",
    "General cooking tip 2",
    "General cooking tip 3"
  ],
  "substitutions": [
    {
      "original": "ingredient name",
      "alternatives": ["substitute 1", "substitute 2"]
    }
  ]
}

IMPORTANT RULES FOR CATEGORY:
- Breakfast items (pancakes, eggs, cereal, etc.) -> "breakfast"
- Main meals for midday (sandwiches, salads, pasta, etc.) -> "lunch"
- Main meals for evening (heavier dishes, roasts, etc.) -> "dinner"
- Light items between meals (chips, crackers, fruit, etc.) -> "snack"
- Sweet treats (cakes, cookies, ice cream, etc.) -> "dessert"

IMPORTANT RULES FOR CUISINE:
- Use lowercase only
- Pick the closest match from the allowed values
- If uncertain, use "other"

Guidelines:
- Make ingredients realistic and commonly available
- Instructions should be clear and beginner-friendly
- Include 6-10 detailed steps
- Provide practical cooking tips
- Estimate realistic cooking times
- Keep total instructions under 12 steps
`

const suggestionPromptTemplate = `
You are a professional chef. Given these available ingredients: %s

Suggest 5 recipes that can be made primarily with these ingredients. It's okay if the recipes need 1-2 common pantry staples (salt, pepper, oil, etc.) that aren't listed.

Return ONLY a valid JSON array (no markdown, no explanations):
[
  {
    "title": "Recipe name",
    "description": "Brief 1-2 sentence description",
    "matchPercentage": 85,
    "missingIngredients": ["ingredient1", "ingredient2"],
    "category": "breakfast|lunch|dinner|snack|dessert",
    "cuisine": "italian|chinese|mexican|etc",
    "prepTime": 20,
    "cookTime": 30,
    "servings": 4
  }
]

Rules:
- matchPercentage should be 70-100%% (how many listed ingredients are used)
- missingIngredients should be common items or optional additions
- Sort by matchPercentage descending
- Make recipes realistic and delicious
`

// RecipePrompt builds the generation prompt for a normalized title. The
// prompt embeds the full target schema and the allowed enum values.
func RecipePrompt(normalizedTitle string) string {
	return fmt.Sprintf(recipePromptTemplate,
		normalizedTitle,
		strings.Join(Categories, ", "),
		strings.Join(Cuisines, ", "),
	)
}

// SuggestionPrompt builds the ingredient-match prompt from the caller's
// pantry ingredient names.
func SuggestionPrompt(ingredientNames []string) string {
	return fmt.Sprintf(suggestionPromptTemplate, strings.Join(ingredientNames, ", "))
}
