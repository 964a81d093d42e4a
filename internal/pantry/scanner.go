package pantry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pantrychef/internal/recipe"
)

// maxScannedItems caps a single scan, matching the vision prompt.
const maxScannedItems = 20

const scanPrompt = `
You are a professional chef and ingredient recognition expert. Analyze this image of a pantry/fridge and identify all visible food ingredients.

Return ONLY a valid JSON array with this exact structure (no markdown, no explanations):
[
  {
    "name": "ingredient name",
    "quantity": "estimated quantity with unit",
    "confidence": 0.95
  }
]

Rules:
- Only identify food ingredients (not containers, utensils, or packaging)
- Be specific (e.g., "Cheddar Cheese" not just "Cheese")
- Estimate realistic quantities (e.g., "3 eggs", "1 cup milk", "2 tomatoes")
- Confidence should be 0.7-1.0 (omit items below 0.7)
- Maximum 20 items
- Common pantry staples are acceptable (salt, pepper, oil)
`

// Vision generates text from a prompt plus an image.
type Vision interface {
	GenerateFromImage(ctx context.Context, prompt, format string, imageData []byte) (string, error)
}

// ScannedIngredient is one ingredient recognized in a pantry photo.
type ScannedIngredient struct {
	Name       string  `json:"name"`
	Quantity   string  `json:"quantity"`
	Confidence float64 `json:"confidence"`
}

// Scanner extracts ingredients from pantry photos via a vision model.
type Scanner struct {
	vision Vision
	logger *zap.Logger
}

// NewScanner creates a Scanner backed by the given vision client.
func NewScanner(vision Vision, logger *zap.Logger) *Scanner {
	return &Scanner{vision: vision, logger: logger}
}

// Scan sends the photo to the vision model and parses the recognized
// ingredient list. Format is the bare image subtype ("png", "jpeg").
func (s *Scanner) Scan(ctx context.Context, format string, imageData []byte) ([]ScannedIngredient, error) {
	raw, err := s.vision.GenerateFromImage(ctx, scanPrompt, format, imageData)
	if err != nil {
		return nil, fmt.Errorf("vision call failed: %w", err)
	}

	clean := recipe.StripCodeFences(raw)
	if !strings.HasPrefix(clean, "[") {
		s.logger.Error("failed to parse scanned ingredients", zap.String("response", clean))
		return nil, fmt.Errorf("%w: response is not a JSON array", recipe.ErrGenerationParse)
	}

	var ingredients []ScannedIngredient
	if err := json.Unmarshal([]byte(clean), &ingredients); err != nil {
		s.logger.Error("failed to parse scanned ingredients", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", recipe.ErrGenerationParse, err)
	}

	if len(ingredients) == 0 {
		return nil, fmt.Errorf("no ingredients detected in the image, please try a clearer photo")
	}

	if len(ingredients) > maxScannedItems {
		ingredients = ingredients[:maxScannedItems]
	}

	return ingredients, nil
}
