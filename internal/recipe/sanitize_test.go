package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_TitleAlwaysOverwritten(t *testing.T) {
	c := &Candidate{Title: "A Totally Different Name"}

	r := Sanitize(c, "Chicken Curry")
	assert.Equal(t, "Chicken Curry", r.Title)
}

func TestSanitize_CategoryAndCuisine(t *testing.T) {
	tests := []struct {
		name         string
		category     string
		cuisine      string
		wantCategory string
		wantCuisine  string
	}{
		{"valid values pass through", "dessert", "italian", "dessert", "italian"},
		{"case-insensitive match", "DESSERT", " Italian ", "dessert", "italian"},
		{"unknown category defaults", "midnight snack", "italian", "dinner", "italian"},
		{"unknown cuisine defaults", "dessert", "klingon", "dessert", "other"},
		{"empty values default", "", "", "dinner", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Sanitize(&Candidate{Category: tt.category, Cuisine: tt.cuisine}, "Test")
			assert.Equal(t, tt.wantCategory, r.Category)
			assert.Equal(t, tt.wantCuisine, r.Cuisine)
		})
	}
}

func TestSanitize_NumericCoercion(t *testing.T) {
	raw := `{
		"prepTime": 15,
		"cookTime": "30",
		"servings": "a few"
	}`
	var c Candidate
	assert.NoError(t, json.Unmarshal([]byte(raw), &c))

	r := Sanitize(&c, "Test")
	assert.NotNil(t, r.PrepTime)
	assert.Equal(t, 15, *r.PrepTime)
	assert.NotNil(t, r.CookTime)
	assert.Equal(t, 30, *r.CookTime)
	assert.Nil(t, r.Servings)
}

func TestSanitize_DropsIncompleteEntries(t *testing.T) {
	c := &Candidate{
		Ingredients: []Ingredient{
			{Item: "Rice", Amount: "2 cups"},
			{Item: "  ", Amount: "1 tbsp"},
		},
		Instructions: []Instruction{
			{Step: 1, Title: "Prep", Instruction: "Rinse the rice"},
			{Step: 2, Title: "Empty", Instruction: ""},
			{Instruction: "Cook until tender"},
		},
		Tips: []string{"Use day-old rice", ""},
		Substitutions: []Substitution{
			{Original: "Rice", Alternatives: []string{"Quinoa"}},
			{Original: "", Alternatives: []string{"Anything"}},
			{Original: "Soy sauce", Alternatives: nil},
		},
	}

	r := Sanitize(c, "Fried Rice")

	assert.Len(t, r.Ingredients, 1)
	assert.Equal(t, "Rice", r.Ingredients[0].Item)

	assert.Len(t, r.Instructions, 2)
	assert.Equal(t, 1, r.Instructions[0].Step)
	assert.Equal(t, 2, r.Instructions[1].Step)
	assert.Equal(t, "Cook until tender", r.Instructions[1].Instruction)

	assert.Equal(t, []string{"Use day-old rice"}, r.Tips)
	assert.Len(t, r.Substitutions, 1)
}

func TestSanitize_EmptyCandidate(t *testing.T) {
	r := Sanitize(&Candidate{}, "Mystery Dish")

	assert.Equal(t, "Mystery Dish", r.Title)
	assert.Equal(t, DefaultCategory, r.Category)
	assert.Equal(t, DefaultCuisine, r.Cuisine)
	assert.Nil(t, r.PrepTime)
	assert.Empty(t, r.Ingredients)
	assert.Empty(t, r.Instructions)
}
