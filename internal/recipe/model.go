package recipe

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Categories are the allowed values for a recipe's category field.
var Categories = []string{"breakfast", "lunch", "dinner", "snack", "dessert"}

// Cuisines are the allowed values for a recipe's cuisine field.
var Cuisines = []string{
	"italian", "chinese", "mexican", "indian", "american", "thai",
	"japanese", "mediterranean", "french", "korean", "vietnamese",
	"spanish", "greek", "turkish", "moroccan", "brazilian", "caribbean",
	"middle-eastern", "british", "german", "portuguese", "other",
}

const (
	DefaultCategory = "dinner"
	DefaultCuisine  = "other"
)

// Recipe is a canonical, stored recipe. Title always holds the
// normalized form and is immutable after insert.
type Recipe struct {
	ID            int64          `json:"id" db:"id"`
	Title         string         `json:"title" db:"title"`
	Description   string         `json:"description" db:"description"`
	Category      string         `json:"category" db:"category"`
	Cuisine       string         `json:"cuisine" db:"cuisine"`
	PrepTime      *int           `json:"prepTime" db:"prep_time"`
	CookTime      *int           `json:"cookTime" db:"cook_time"`
	Servings      *int           `json:"servings" db:"servings"`
	Ingredients   []Ingredient   `json:"ingredients"`
	Instructions  []Instruction  `json:"instructions"`
	Nutrition     *Nutrition     `json:"nutrition,omitempty"`
	Tips          []string       `json:"tips"`
	Substitutions []Substitution `json:"substitutions"`
	ImageURL      string         `json:"imageUrl" db:"image_url"`
	IsPublic      bool           `json:"isPublic" db:"is_public"`
	AuthorID      string         `json:"author" db:"author_id"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
}

// Ingredient is one entry of a recipe's ingredient list.
type Ingredient struct {
	Item     string `json:"item"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
}

// Instruction is one ordered cooking step.
type Instruction struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Tip         string `json:"tip,omitempty"`
}

// Nutrition holds per-serving macros. Fields are null when the model
// returned something that is not a number.
type Nutrition struct {
	Calories FlexNumber `json:"calories"`
	Protein  FlexNumber `json:"protein"`
	Carbs    FlexNumber `json:"carbs"`
	Fat      FlexNumber `json:"fat"`
}

// Substitution maps an ingredient to acceptable replacements.
type Substitution struct {
	Original     string   `json:"original"`
	Alternatives []string `json:"alternatives"`
}

// Suggestion is one unpersisted candidate from the ingredient-match
// path. Ordering comes straight from the provider and is not re-sorted.
type Suggestion struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	MatchPercentage    FlexNumber `json:"matchPercentage"`
	MissingIngredients []string   `json:"missingIngredients"`
	Category           string     `json:"category"`
	Cuisine            string     `json:"cuisine"`
	PrepTime           FlexNumber `json:"prepTime"`
	CookTime           FlexNumber `json:"cookTime"`
	Servings           FlexNumber `json:"servings"`
}

// User identifies the caller. Identity and tier are computed by an
// external provider; the resolver only carries them through.
type User struct {
	ID    string
	IsPro bool
}

// SavedRecipe joins a user to a bookmarked recipe.
type SavedRecipe struct {
	ID       int64     `json:"id" db:"id"`
	UserID   string    `json:"user" db:"user_id"`
	RecipeID int64     `json:"recipe" db:"recipe_id"`
	SavedAt  time.Time `json:"savedAt" db:"saved_at"`
}

// FlexNumber tolerates the looseness of model output: it decodes a
// JSON number or a numeric string, and degrades to null for anything
// else instead of failing the whole document.
type FlexNumber struct {
	Value float64
	Valid bool
}

// UnmarshalJSON never returns an error; malformed input yields null.
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	f.Valid = false

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = num
		f.Valid = true
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if parsed, perr := strconv.ParseFloat(strings.TrimSpace(str), 64); perr == nil {
			f.Value = parsed
			f.Valid = true
		}
	}

	return nil
}

// MarshalJSON renders the number, or null when invalid.
func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Int converts to a nullable integer, truncating fractions.
func (f FlexNumber) Int() *int {
	if !f.Valid {
		return nil
	}
	v := int(f.Value)
	return &v
}
