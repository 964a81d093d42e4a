package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore implements Store on PostgreSQL. Duplicate prevention
// for concurrent generations lives here, in the case-insensitive
// unique index on title, not in application-level locking.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects and bootstraps the schema.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS app_recipes (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		category TEXT,
		cuisine TEXT,
		prep_time INTEGER,
		cook_time INTEGER,
		servings INTEGER,
		ingredients JSONB NOT NULL DEFAULT '[]',
		instructions JSONB NOT NULL DEFAULT '[]',
		nutrition JSONB,
		tips JSONB NOT NULL DEFAULT '[]',
		substitutions JSONB NOT NULL DEFAULT '[]',
		image_url TEXT NOT NULL DEFAULT '',
		is_public BOOLEAN NOT NULL DEFAULT TRUE,
		author_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS app_recipes_title_lower ON app_recipes (LOWER(title));
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}

	schema = `
	CREATE TABLE IF NOT EXISTS app_saved_recipes (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		recipe_id BIGINT NOT NULL REFERENCES app_recipes(id),
		saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, recipe_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create saved recipes table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

const recipeColumns = `id, title, description, category, cuisine, prep_time, cook_time, servings,
	ingredients, instructions, nutrition, tips, substitutions,
	image_url, is_public, author_id, created_at, updated_at`

// FindByTitle retrieves the most recently created recipe matching the
// title case-insensitively, or nil when none exists.
func (s *PostgresStore) FindByTitle(ctx context.Context, title string) (*Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recipeColumns+" FROM app_recipes WHERE LOWER(title) = LOWER($1) ORDER BY id DESC LIMIT 1",
		title)

	r, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, fmt.Errorf("failed to find recipe by title: %w", err)
	}
	return r, nil
}

// GetByID retrieves a recipe by id, or nil when none exists.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recipeColumns+" FROM app_recipes WHERE id = $1", id)

	r, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by id: %w", err)
	}
	return r, nil
}

// Insert persists a draft. On a title collision (a concurrent resolve
// won the race) it re-reads and returns the existing row instead of
// erroring, so duplicate generations degrade to a wasted API call.
func (s *PostgresStore) Insert(ctx context.Context, draft *Recipe) (*Recipe, error) {
	ingredientsJSON, err := json.Marshal(draft.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructionsJSON, err := json.Marshal(draft.Instructions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal instructions: %w", err)
	}
	tipsJSON, err := json.Marshal(draft.Tips)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tips: %w", err)
	}
	substitutionsJSON, err := json.Marshal(draft.Substitutions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal substitutions: %w", err)
	}
	var nutritionJSON []byte
	if draft.Nutrition != nil {
		nutritionJSON, err = json.Marshal(draft.Nutrition)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal nutrition: %w", err)
		}
	}

	inserted := *draft
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO app_recipes (title, description, category, cuisine, prep_time, cook_time, servings,
			ingredients, instructions, nutrition, tips, substitutions, image_url, is_public, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (LOWER(title)) DO NOTHING
		RETURNING id, created_at, updated_at`,
		draft.Title,
		draft.Description,
		draft.Category,
		draft.Cuisine,
		draft.PrepTime,
		draft.CookTime,
		draft.Servings,
		ingredientsJSON,
		instructionsJSON,
		nutritionJSON,
		tipsJSON,
		substitutionsJSON,
		draft.ImageURL,
		draft.IsPublic,
		draft.AuthorID,
	).Scan(&inserted.ID, &inserted.CreatedAt, &inserted.UpdatedAt)

	if err == sql.ErrNoRows {
		// Lost the insert race; the winner's row is the canonical one.
		existing, ferr := s.FindByTitle(ctx, draft.Title)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, fmt.Errorf("insert conflict for title %q but no existing row found", draft.Title)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}

	return &inserted, nil
}

// ListPublic retrieves public recipes, optionally filtered by cuisine
// and/or category (case-insensitive).
func (s *PostgresStore) ListPublic(ctx context.Context, cuisine, category string) ([]*Recipe, error) {
	query := "SELECT " + recipeColumns + " FROM app_recipes WHERE is_public = TRUE"
	var args []interface{}

	paramCount := 1
	if cuisine != "" {
		query += fmt.Sprintf(" AND LOWER(cuisine) = LOWER($%d)", paramCount)
		args = append(args, cuisine)
		paramCount++
	}
	if category != "" {
		query += fmt.Sprintf(" AND LOWER(category) = LOWER($%d)", paramCount)
		args = append(args, category)
		paramCount++
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return recipes, nil
}

// SaveForUser bookmarks a recipe for a user. Duplicate saves are
// idempotent no-ops; the returned flag reports whether the recipe was
// already saved.
func (s *PostgresStore) SaveForUser(ctx context.Context, userID string, recipeID int64) (alreadySaved bool, err error) {
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO app_saved_recipes (user_id, recipe_id) VALUES ($1, $2)
		ON CONFLICT (user_id, recipe_id) DO NOTHING
		RETURNING id`,
		userID, recipeID).Scan(&id)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save recipe for user: %w", err)
	}
	return false, nil
}

// RemoveForUser deletes a bookmark. Removing a recipe that was never
// saved is not an error.
func (s *PostgresStore) RemoveForUser(ctx context.Context, userID string, recipeID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM app_saved_recipes WHERE user_id = $1 AND recipe_id = $2",
		userID, recipeID)
	if err != nil {
		return fmt.Errorf("failed to remove saved recipe: %w", err)
	}
	return nil
}

// IsSaved reports whether the user has bookmarked the recipe.
func (s *PostgresStore) IsSaved(ctx context.Context, userID string, recipeID int64) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM app_saved_recipes WHERE user_id = $1 AND recipe_id = $2 LIMIT 1",
		userID, recipeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check saved recipe: %w", err)
	}
	return true, nil
}

// ListSavedByUser retrieves the user's bookmarked recipes, most
// recently saved first.
func (s *PostgresStore) ListSavedByUser(ctx context.Context, userID string) ([]*Recipe, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT r.id, r.title, r.description, r.category, r.cuisine, r.prep_time, r.cook_time, r.servings,
			r.ingredients, r.instructions, r.nutrition, r.tips, r.substitutions,
			r.image_url, r.is_public, r.author_id, r.created_at, r.updated_at
		FROM app_saved_recipes sr
		JOIN app_recipes r ON r.id = sr.recipe_id
		WHERE sr.user_id = $1
		ORDER BY sr.saved_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved recipe row: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return recipes, nil
}

// rowScanner is satisfied by both *sql.Row and *sqlx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (*Recipe, error) {
	var r Recipe
	var ingredientsJSON, instructionsJSON, nutritionJSON, tipsJSON, substitutionsJSON []byte
	var description, category, cuisine, authorID sql.NullString

	err := row.Scan(
		&r.ID,
		&r.Title,
		&description,
		&category,
		&cuisine,
		&r.PrepTime,
		&r.CookTime,
		&r.Servings,
		&ingredientsJSON,
		&instructionsJSON,
		&nutritionJSON,
		&tipsJSON,
		&substitutionsJSON,
		&r.ImageURL,
		&r.IsPublic,
		&authorID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Description = description.String
	r.Category = category.String
	r.Cuisine = cuisine.String
	r.AuthorID = authorID.String

	if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	if err := json.Unmarshal(instructionsJSON, &r.Instructions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
	}
	if err := json.Unmarshal(tipsJSON, &r.Tips); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tips: %w", err)
	}
	if err := json.Unmarshal(substitutionsJSON, &r.Substitutions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal substitutions: %w", err)
	}
	if len(nutritionJSON) > 0 {
		r.Nutrition = &Nutrition{}
		if err := json.Unmarshal(nutritionJSON, r.Nutrition); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nutrition: %w", err)
		}
	}

	return &r, nil
}
