package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pantrychef/internal/api"
	"pantrychef/internal/config"
	"pantrychef/internal/pantry"
	"pantrychef/internal/platform/gemini"
	"pantrychef/internal/platform/localllm"
	"pantrychef/internal/platform/unsplash"
	"pantrychef/internal/recipe"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("failed to build logger: %w", err))
	}
	defer logger.Sync()

	var generator interface {
		Generate(ctx context.Context, prompt string) (string, error)
		GenerateFromImage(ctx context.Context, prompt, format string, imageData []byte) (string, error)
	}
	switch cfg.GenerationBackend {
	case "local":
		generator = localllm.NewClient(cfg.LocalLLMURL, cfg.LocalLLMModel)
		logger.Info("using local generation backend", zap.String("url", cfg.LocalLLMURL), zap.String("model", cfg.LocalLLMModel))
	default:
		geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			panic(fmt.Errorf("error creating gemini client: %w", err))
		}
		generator = geminiClient
	}

	imageSearcher := unsplash.NewClient(cfg.UnsplashAccessKey)
	if cfg.UnsplashAccessKey == "" {
		logger.Warn("UNSPLASH_ACCESS_KEY not set, recipes will be stored without images")
	}

	recipeStore, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Errorf("error creating recipe store: %w", err))
	}

	pantryStore, err := pantry.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Errorf("error creating pantry store: %w", err))
	}

	resolver := recipe.NewResolver(generator, imageSearcher, recipeStore, logger)
	scanner := pantry.NewScanner(generator, logger)
	handler := api.NewHandler(resolver, recipeStore, pantryStore, scanner, logger)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID", "X-User-Tier"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

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
	r.PUT("/pantry/:id", handler.UpdatePantryItem)
	r.DELETE("/pantry/:id", handler.DeletePantryItem)

	logger.Info("starting server", zap.Int("port", cfg.Port))
	if err := r.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// newLogger builds a production JSON logger at the configured level.
// The debug level switches to the development config for readable
// console output.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if lvl == zapcore.DebugLevel {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
