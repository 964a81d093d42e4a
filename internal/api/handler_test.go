package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"pantrychef/internal/pantry"
	"pantrychef/internal/recipe"
)

// mockResolver is a mock of the Resolver.
type mockResolver struct {
	resolution    *recipe.Resolution
	resolveErr    error
	suggestions   []recipe.Suggestion
	suggestErr    error
	receivedTitle string
	receivedNames []string
	receivedUser  recipe.User
}

func (m *mockResolver) Resolve(ctx context.Context, rawTitle string, user recipe.User) (*recipe.Resolution, error) {
	m.receivedTitle = rawTitle
	m.receivedUser = user
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.resolution, nil
}

func (m *mockResolver) Suggest(ctx context.Context, ingredientNames []string, user recipe.User) ([]recipe.Suggestion, error) {
	m.receivedNames = ingredientNames
	m.receivedUser = user
	if m.suggestErr != nil {
		return nil, m.suggestErr
	}
	return m.suggestions, nil
}

// mockRecipeStore is a mock of the RecipeStore.
type mockRecipeStore struct {
	recipes      map[int64]*recipe.Recipe
	saved        map[string]map[int64]bool
	publicList   []*recipe.Recipe
	alreadySaved bool
}

func newMockRecipeStore() *mockRecipeStore {
	return &mockRecipeStore{
		recipes: make(map[int64]*recipe.Recipe),
		saved:   make(map[string]map[int64]bool),
	}
}

func (m *mockRecipeStore) GetByID(ctx context.Context, id int64) (*recipe.Recipe, error) {
	return m.recipes[id], nil
}

func (m *mockRecipeStore) ListPublic(ctx context.Context, cuisine, category string) ([]*recipe.Recipe, error) {
	return m.publicList, nil
}

func (m *mockRecipeStore) SaveForUser(ctx context.Context, userID string, recipeID int64) (bool, error) {
	if m.saved[userID] == nil {
		m.saved[userID] = make(map[int64]bool)
	}
	already := m.saved[userID][recipeID]
	m.saved[userID][recipeID] = true
	return already, nil
}

func (m *mockRecipeStore) RemoveForUser(ctx context.Context, userID string, recipeID int64) error {
	delete(m.saved[userID], recipeID)
	return nil
}

func (m *mockRecipeStore) ListSavedByUser(ctx context.Context, userID string) ([]*recipe.Recipe, error) {
	var out []*recipe.Recipe
	for id := range m.saved[userID] {
		if r, ok := m.recipes[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockPantryStore is a mock of the PantryStore.
type mockPantryStore struct {
	items  []*pantry.Item
	nextID int64
}

func (m *mockPantryStore) ListByOwner(ctx context.Context, ownerID string) ([]*pantry.Item, error) {
	var out []*pantry.Item
	for _, item := range m.items {
		if item.OwnerID == ownerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockPantryStore) Insert(ctx context.Context, item *pantry.Item) (*pantry.Item, error) {
	m.nextID += 1
	stored := *item
	stored.ID = m.nextID
	m.items = append(m.items, &stored)
	return &stored, nil
}

func (m *mockPantryStore) UpdateQuantity(ctx context.Context, ownerID string, id int64, quantity string) (*pantry.Item, error) {
	for _, item := range m.items {
		if item.ID == id && item.OwnerID == ownerID {
			item.Quantity = quantity
			return item, nil
		}
	}
	return nil, nil
}

func (m *mockPantryStore) Delete(ctx context.Context, ownerID string, id int64) error {
	kept := m.items[:0]
	for _, item := range m.items {
		if item.ID != id || item.OwnerID != ownerID {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return nil
}

// mockScanner is a mock of the PantryScanner.
type mockScanner struct {
	ingredients []pantry.ScannedIngredient
	err         error
}

func (m *mockScanner) Scan(ctx context.Context, format string, imageData []byte) ([]pantry.ScannedIngredient, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ingredients, nil
}

func newTestRouter(resolver Resolver, recipeStore RecipeStore, pantryStore PantryStore, scanner PantryScanner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(resolver, recipeStore, pantryStore, scanner, zap.NewNop())

	r := gin.New()
	r.POST("/recipes/resolve", handler.ResolveRecipe)
	r.POST("/recipes/suggestions", handler.SuggestRecipes)
	r.GET("/recipes", handler.ListRecipes)
	r.GET("/recipes/:id", handler.GetRecipe)
	r.POST("/saved-recipes", handler.SaveRecipe)
	r.DELETE("/saved-recipes/:recipeId", handler.UnsaveRecipe)
	r.GET("/saved-recipes", handler.ListSavedRecipes)
	r.POST("/pantry/scan", handler.ScanPantry)
	r.GET("/pantry", handler.ListPantryItems)
	r.POST("/pantry", handler.AddPantryItems)
	return r
}

func doJSON(r *gin.Engine, method, path, userID, tier string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if tier != "" {
		req.Header.Set("X-User-Tier", tier)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestResolveRecipe(t *testing.T) {
	prepTime := 10
	resolver := &mockResolver{resolution: &recipe.Resolution{
		Recipe: &recipe.Recipe{
			ID:       42,
			Title:    "Pad Thai",
			Category: "dinner",
			Cuisine:  "thai",
			PrepTime: &prepTime,
		},
		FromDatabase: false,
	}}
	r := newTestRouter(resolver, newMockRecipeStore(), &mockPantryStore{}, &mockScanner{})

	rr := doJSON(r, http.MethodPost, "/recipes/resolve", "user-1", "", gin.H{"recipeName": "pad thai"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pad thai", resolver.receivedTitle)
	assert.Equal(t, "user-1", resolver.receivedUser.ID)
	assert.False(t, resolver.receivedUser.IsPro)

	var resp struct {
		Success              bool            `json:"success"`
		Recipe               *recipe.Recipe  `json:"recipe"`
		RecipeID             int64           `json:"recipeId"`
		FromDatabase         bool            `json:"fromDatabase"`
		IsPro                bool            `json:"isPro"`
		RecommendationsLimit json.RawMessage `json:"recommendationsLimit"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(42), resp.RecipeID)
	assert.Equal(t, "Pad Thai", resp.Recipe.Title)
	assert.False(t, resp.FromDatabase)
	assert.Equal(t, "5", string(resp.RecommendationsLimit))
}

func TestResolveRecipe_ProTier(t *testing.T) {
	resolver := &mockResolver{resolution: &recipe.Resolution{
		Recipe:       &recipe.Recipe{ID: 42, Title: "Pad Thai"},
		FromDatabase: true,
		IsSaved:      true,
	}}
	r := newTestRouter(resolver, newMockRecipeStore(), &mockPantryStore{}, &mockScanner{})

	rr := doJSON(r, http.MethodPost, "/recipes/resolve", "user-1", "pro", gin.H{"recipeName": "pad thai"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, resolver.receivedUser.IsPro)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "unlimited", resp["recommendationsLimit"])
	assert.Equal(t, true, resp["fromDatabase"])
	assert.Equal(t, true, resp["isSaved"])
}

func TestResolveRecipe_Unauthenticated(t *testing.T) {
	r := newTestRouter(&mockResolver{}, newMockRecipeStore(), &mockPantryStore{}, &mockScanner{})

	rr := doJSON(r, http.MethodPost, "/recipes/resolve", "", "", gin.H{"recipeName": "pad thai"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestResolveRecipe_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid input", recipe.ErrInvalidInput, http.StatusBadRequest},
		{"generation parse", recipe.ErrGenerationParse, http.StatusBadGateway},
		{"store unavailable", recipe.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{resolveErr: tt.err}
			r := newTestRouter(resolver, newMockRecipeStore(), &mockPantryStore{}, &mockScanner{})

			rr := doJSON(r, http.MethodPost, "/recipes/resolve", "user-1", "", gin.H{"recipeName": "pad thai"})
			assert.Equal(t, tt.wantCode, rr.Code)

			var resp map[string]interface{}
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestSuggestRecipes(t *testing.T) {
	resolver := &mockResolver{suggestions: []recipe.Suggestion{
		{Title: "Fried Rice"},
		{Title: "Egg Drop Soup"},
	}}
	pantryStore := &mockPantryStore{items: []*pantry.Item{
		{ID: 1, OwnerID: "user-1", Name: "Rice"},
		{ID: 2, OwnerID: "user-1", Name: "Eggs"},
		{ID: 3, OwnerID: "someone-else", Name: "Caviar"},
	}}
	r := newTestRouter(resolver, newMockRecipeStore(), pantryStore, &mockScanner{})

	rr := doJSON(r, http.MethodPost, "/recipes/suggestions", "user-1", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Rice", "Eggs"}, resolver.receivedNames)

	var resp struct {
		Success         bool                `json:"success"`
		Recipes         []recipe.Suggestion `json:"recipes"`
		IngredientsUsed string              `json:"ingredientsUsed"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Recipes, 2)
	assert.Equal(t, "Rice, Eggs", resp.IngredientsUsed)
}

func TestSuggestRecipes_EmptyPantry(t *testing.T) {
	resolver := &mockResolver{suggestErr: recipe.ErrEmptyPantry}
	r := newTestRouter(resolver, newMockRecipeStore(), &mockPantryStore{}, &mockScanner{})

	rr := doJSON(r, http.MethodPost, "/recipes/suggestions", "user-1", "", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "pantry is empty")
}

func TestGetRecipe(t *testing.T) {
	store := newMockRecipeStore()
	store.recipes[7] = &recipe.Recipe{ID: 7, Title: "Tiramisu"}
	r := newTestRouter(&mockResolver{}, store, &mockPantryStore{}, &mockScanner{})

	rr := doJSON(r, http.MethodGet, "/recipes/7", "", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tiramisu")

	rr = doJSON(r, http.MethodGet, "/recipes/999", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(r, http.MethodGet, "/recipes/not-a-number", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSaveAndUnsaveRecipe(t *testing.T) {
	store := newMockRecipeStore()
	store.recipes[7] = &recipe.Recipe{ID: 7, Title: "Tiramisu"}
	r := newTestRouter(&mockResolver{}, store, &mockPantryStore{}, &mockScanner{})

	rr := doJSON(r, http.MethodPost, "/saved-recipes", "user-1", "", gin.H{"recipeId": 7})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["alreadySaved"])

	// Saving again is a no-op.
	rr = doJSON(r, http.MethodPost, "/saved-recipes", "user-1", "", gin.H{"recipeId": 7})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["alreadySaved"])

	rr = doJSON(r, http.MethodGet, "/saved-recipes", "user-1", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tiramisu")

	rr = doJSON(r, http.MethodDelete, "/saved-recipes/7", "user-1", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(r, http.MethodGet, "/saved-recipes", "user-1", "", nil)
	assert.NotContains(t, rr.Body.String(), "Tiramisu")
}

func TestPantryCRUD(t *testing.T) {
	pantryStore := &mockPantryStore{}
	r := newTestRouter(&mockResolver{}, newMockRecipeStore(), pantryStore, &mockScanner{})

	rr := doJSON(r, http.MethodPost, "/pantry", "user-1", "", gin.H{
		"items": []gin.H{
			{"name": "Rice", "quantity": "2 cups"},
			{"name": "  ", "quantity": "ignored"},
		},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, pantryStore.items, 1)
	assert.Equal(t, "Rice", pantryStore.items[0].Name)

	rr = doJSON(r, http.MethodGet, "/pantry", "user-1", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Rice")

	rr = doJSON(r, http.MethodPost, "/pantry", "user-1", "", gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestScanPantry(t *testing.T) {
	scanner := &mockScanner{ingredients: []pantry.ScannedIngredient{
		{Name: "Eggs", Quantity: "6 eggs", Confidence: 0.98},
	}}
	r := newTestRouter(&mockResolver{}, newMockRecipeStore(), &mockPantryStore{}, scanner)

	var img bytes.Buffer
	assert.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "pantry.png")
	assert.NoError(t, err)
	_, err = part.Write(img.Bytes())
	assert.NoError(t, err)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/pantry/scan", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-User-ID", "user-1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Eggs")

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(10), resp["scansLimit"])
}

func TestScanPantry_RejectsUnsupportedType(t *testing.T) {
	r := newTestRouter(&mockResolver{}, newMockRecipeStore(), &mockPantryStore{}, &mockScanner{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("image", "pantry.gif")
	part.Write([]byte("GIF89a"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/pantry/scan", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-User-ID", "user-1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid file type")
}

func TestScanPantry_RequiresImage(t *testing.T) {
	r := newTestRouter(&mockResolver{}, newMockRecipeStore(), &mockPantryStore{}, &mockScanner{})

	rr := doJSON(r, http.MethodPost, "/pantry/scan", "user-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no image provided")
}
