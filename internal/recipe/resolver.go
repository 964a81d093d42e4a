package recipe

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Generator calls an external generative model with a prompt and
// returns its raw, unstructured text. One attempt per call, no retries.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageSearcher finds a representative photo URL for a query. An empty
// string means no image; only transport failures return an error.
type ImageSearcher interface {
	SearchImage(ctx context.Context, query string) (string, error)
}

// Store is the durable keyed storage the resolver depends on.
type Store interface {
	// FindByTitle does a case-insensitive exact lookup, returning the
	// most recently created row, or nil on a miss.
	FindByTitle(ctx context.Context, title string) (*Recipe, error)
	// Insert persists a draft, merging on a title collision instead of
	// creating a duplicate row.
	Insert(ctx context.Context, draft *Recipe) (*Recipe, error)
	// IsSaved reports whether the user has bookmarked the recipe.
	IsSaved(ctx context.Context, userID string, recipeID int64) (bool, error)
}

// Resolution is the outcome of resolving a title.
type Resolution struct {
	Recipe       *Recipe
	FromDatabase bool
	IsSaved      bool
}

// Resolver turns a requested recipe name into a stored, validated
// recipe: normalize, look up, and on a miss generate, sanitize, enrich
// and persist exactly once per distinct normalized title.
type Resolver struct {
	generator Generator
	images    ImageSearcher
	store     Store
	logger    *zap.Logger
}

// NewResolver wires the resolver's collaborators. Clients are injected
// so tests can substitute fakes.
func NewResolver(generator Generator, images ImageSearcher, store Store, logger *zap.Logger) *Resolver {
	return &Resolver{
		generator: generator,
		images:    images,
		store:     store,
		logger:    logger,
	}
}

// Resolve implements the resolution pipeline. It performs exactly one
// store read, and exactly one store write on a genuine miss.
func (r *Resolver) Resolve(ctx context.Context, rawTitle string, user User) (*Resolution, error) {
	title, err := NormalizeTitle(rawTitle)
	if err != nil {
		return nil, err
	}

	existing, err := r.store.FindByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if existing != nil {
		r.logger.Info("recipe found in database",
			zap.String("title", title),
			zap.Int64("recipe_id", existing.ID))

		saved, err := r.store.IsSaved(ctx, user.ID, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		return &Resolution{Recipe: existing, FromDatabase: true, IsSaved: saved}, nil
	}

	r.logger.Info("recipe not found, generating", zap.String("title", title))

	raw, err := r.generator.Generate(ctx, RecipePrompt(title))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	candidate, err := ParseCandidate(raw)
	if err != nil {
		r.logger.Error("failed to parse generated recipe",
			zap.String("title", title),
			zap.Error(err))
		return nil, err
	}

	draft := Sanitize(candidate, title)
	draft.ImageURL = r.fetchImage(ctx, title)
	draft.IsPublic = true
	draft.AuthorID = user.ID

	inserted, err := r.store.Insert(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	r.logger.Info("recipe generated and saved",
		zap.String("title", title),
		zap.Int64("recipe_id", inserted.ID))

	return &Resolution{Recipe: inserted, FromDatabase: false}, nil
}

// Suggest builds a single prompt from the caller's pantry ingredient
// names and returns the provider's ranked candidate list. Results are
// never persisted and the provider's ordering is passed through as-is.
func (r *Resolver) Suggest(ctx context.Context, ingredientNames []string, user User) ([]Suggestion, error) {
	if len(ingredientNames) == 0 {
		return nil, ErrEmptyPantry
	}

	raw, err := r.generator.Generate(ctx, SuggestionPrompt(ingredientNames))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		r.logger.Error("failed to parse recipe suggestions", zap.Error(err))
		return nil, err
	}

	return suggestions, nil
}

// fetchImage is best-effort: any failure degrades to an empty string
// and never fails the resolution.
func (r *Resolver) fetchImage(ctx context.Context, title string) string {
	url, err := r.images.SearchImage(ctx, title)
	if err != nil {
		r.logger.Warn("image search failed, continuing without image",
			zap.String("title", title),
			zap.Error(err))
		return ""
	}
	return url
}
