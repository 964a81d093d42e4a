package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"pantrychef/internal/pantry"
	"pantrychef/internal/recipe"
)

// externalTimeout bounds a single request's external calls (model,
// image search, database round trips).
const externalTimeout = 45 * time.Second

// maxImageWidth is the downscale target for uploaded pantry photos
// before they are sent to the vision model.
const maxImageWidth = 1024

// Resolver resolves titles into stored recipes and produces pantry
// suggestions.
type Resolver interface {
	Resolve(ctx context.Context, rawTitle string, user recipe.User) (*recipe.Resolution, error)
	Suggest(ctx context.Context, ingredientNames []string, user recipe.User) ([]recipe.Suggestion, error)
}

// RecipeStore is the read/bookmark surface of the recipe store.
type RecipeStore interface {
	GetByID(ctx context.Context, id int64) (*recipe.Recipe, error)
	ListPublic(ctx context.Context, cuisine, category string) ([]*recipe.Recipe, error)
	SaveForUser(ctx context.Context, userID string, recipeID int64) (bool, error)
	RemoveForUser(ctx context.Context, userID string, recipeID int64) error
	ListSavedByUser(ctx context.Context, userID string) ([]*recipe.Recipe, error)
}

// PantryStore persists pantry items.
type PantryStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*pantry.Item, error)
	Insert(ctx context.Context, item *pantry.Item) (*pantry.Item, error)
	UpdateQuantity(ctx context.Context, ownerID string, id int64, quantity string) (*pantry.Item, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// PantryScanner extracts ingredients from pantry photos.
type PantryScanner interface {
	Scan(ctx context.Context, format string, imageData []byte) ([]pantry.ScannedIngredient, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Resolver    Resolver
	RecipeStore RecipeStore
	PantryStore PantryStore
	Scanner     PantryScanner
	Logger      *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(resolver Resolver, recipeStore RecipeStore, pantryStore PantryStore, scanner PantryScanner, logger *zap.Logger) *Handler {
	return &Handler{
		Resolver:    resolver,
		RecipeStore: recipeStore,
		PantryStore: pantryStore,
		Scanner:     scanner,
		Logger:      logger,
	}
}

// currentUser reads the identity the upstream auth layer attaches to
// every request. Identity is an input here, never computed.
func currentUser(c *gin.Context) (recipe.User, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		return recipe.User{}, false
	}
	return recipe.User{
		ID:    id,
		IsPro: strings.EqualFold(c.GetHeader("X-User-Tier"), "pro"),
	}, true
}

// limitValue renders a tier-dependent limit the way the clients expect:
// a number for free users, the string "unlimited" for pro.
func limitValue(isPro bool, freeLimit int) interface{} {
	if isPro {
		return "unlimited"
	}
	return freeLimit
}

// ResolveRecipe handles POST /recipes/resolve.
func (h *Handler) ResolveRecipe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	var req struct {
		RecipeName string `json:"recipeName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "recipe name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), externalTimeout)
	defer cancel()

	res, err := h.Resolver.Resolve(ctx, req.RecipeName, user)
	if err != nil {
		h.renderError(c, err)
		return
	}

	message := "Recipe generated and saved successfully!"
	if res.FromDatabase {
		message = "Recipe loaded from database"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"recipe":               res.Recipe,
		"recipeId":             res.Recipe.ID,
		"isSaved":              res.IsSaved,
		"fromDatabase":         res.FromDatabase,
		"isPro":                user.IsPro,
		"recommendationsLimit": limitValue(user.IsPro, 5),
		"message":              message,
	})
}

// SuggestRecipes handles POST /recipes/suggestions. The caller's whole
// pantry is the input; results are ranked by the model and never
// persisted.
func (h *Handler) SuggestRecipes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), externalTimeout)
	defer cancel()

	items, err := h.PantryStore.ListByOwner(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}

	ingredients := pantry.Names(items)
	suggestions, err := h.Resolver.Suggest(ctx, ingredients, user)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"recipes":              suggestions,
		"ingredientsUsed":      strings.Join(ingredients, ", "),
		"recommendationsLimit": limitValue(user.IsPro, 5),
		"message":              fmt.Sprintf("Found %d recipes you can make!", len(suggestions)),
	})
}

// GetRecipe handles GET /recipes/:id.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid recipe ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	r, err := h.RecipeStore.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "recipe not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipe": r})
}

// ListRecipes handles GET /recipes with optional cuisine and category
// filters.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipes, err := h.RecipeStore.ListPublic(ctx, c.Query("cuisine"), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipes": recipes, "count": len(recipes)})
}

// SaveRecipe handles POST /saved-recipes. Saving twice is a no-op.
func (h *Handler) SaveRecipe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	var req struct {
		RecipeID int64 `json:"recipeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RecipeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "recipe ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	alreadySaved, err := h.RecipeStore.SaveForUser(ctx, user.ID, req.RecipeID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}

	message := "Recipe saved to your collection!"
	if alreadySaved {
		message = "Recipe is already in your collection"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "alreadySaved": alreadySaved, "message": message})
}

// UnsaveRecipe handles DELETE /saved-recipes/:recipeId.
func (h *Handler) UnsaveRecipe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	recipeID, err := strconv.ParseInt(c.Param("recipeId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid recipe ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.RecipeStore.RemoveForUser(ctx, user.ID, recipeID); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Recipe removed from your collection"})
}

// ListSavedRecipes handles GET /saved-recipes.
func (h *Handler) ListSavedRecipes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipes, err := h.RecipeStore.ListSavedByUser(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipes": recipes, "count": len(recipes)})
}

// ScanPantry handles POST /pantry/scan: a pantry photo goes in,
// recognized ingredients come out. Nothing is persisted; the client
// reviews the list and saves selected items separately.
func (h *Handler) ScanPantry(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no image provided"})
		return
	}

	allowedExtensions := map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
	}
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[extension] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid file type, only JPEG, JPG, and PNG images are allowed"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to open image"})
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to read image"})
		return
	}

	format, downscaled, err := downscaleImage(imageData, extension)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to decode image"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), externalTimeout)
	defer cancel()

	ingredients, err := h.Scanner.Scan(ctx, format, downscaled)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"ingredients": ingredients,
		"scansLimit":  limitValue(user.IsPro, 10),
		"message":     fmt.Sprintf("Found %d ingredients!", len(ingredients)),
	})
}

// ListPantryItems handles GET /pantry.
func (h *Handler) ListPantryItems(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.PantryStore.ListByOwner(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items, "count": len(items)})
}

// AddPantryItems handles POST /pantry, accepting one or more items
// (e.g. a reviewed scan result saved in bulk).
func (h *Handler) AddPantryItems(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	var req struct {
		Items []struct {
			Name     string `json:"name"`
			Quantity string `json:"quantity"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no ingredients to save"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	saved := make([]*pantry.Item, 0, len(req.Items))
	for _, in := range req.Items {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		item, err := h.PantryStore.Insert(ctx, &pantry.Item{
			OwnerID:  user.ID,
			Name:     name,
			Quantity: strings.TrimSpace(in.Quantity),
		})
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
			return
		}
		saved = append(saved, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   saved,
		"message": fmt.Sprintf("Saved %d items to your pantry!", len(saved)),
	})
}

// UpdatePantryItem handles PUT /pantry/:id.
func (h *Handler) UpdatePantryItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid item ID"})
		return
	}

	var req struct {
		Quantity string `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "quantity is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.PantryStore.UpdateQuantity(ctx, user.ID, id, req.Quantity)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "pantry item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// DeletePantryItem handles DELETE /pantry/:id.
func (h *Handler) DeletePantryItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid item ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.PantryStore.Delete(ctx, user.ID, id); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from your pantry"})
}

// renderError maps resolution errors to tagged JSON results so the
// calling layer can show a message without a stack trace.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recipe.ErrInvalidInput), errors.Is(err, recipe.ErrEmptyPantry):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, recipe.ErrGenerationParse):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": recipe.ErrGenerationParse.Error()})
	case errors.Is(err, recipe.ErrStoreUnavailable):
		h.Logger.Error("store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "service temporarily unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"success": false, "error": "request timed out"})
	default:
		h.Logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}

// downscaleImage shrinks wide photos before the vision call to keep
// request payloads small. Returns the bare format name used on re-encode.
func downscaleImage(imageData []byte, originalExtension string) (string, []byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	switch originalExtension {
	case ".jpeg", ".jpg":
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return "", nil, fmt.Errorf("failed to encode image: %w", err)
		}
		return "jpeg", buf.Bytes(), nil
	case ".png":
		if err := png.Encode(&buf, img); err != nil {
			return "", nil, fmt.Errorf("failed to encode image: %w", err)
		}
		return "png", buf.Bytes(), nil
	default:
		return "", nil, fmt.Errorf("unsupported image format: %s", originalExtension)
	}
}
