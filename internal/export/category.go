package export

import (
	"context"
	"fmt"

	"github.com/utafrali/searchfeed/internal/domain"
)

// CategoryLookup retrieves a single category by ID. It is satisfied by the
// catalog repository.
type CategoryLookup interface {
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
}

// Linearizer flattens a category's ancestor chain into an ordered list.
type Linearizer struct {
	categories CategoryLookup
}

// NewLinearizer creates a category hierarchy linearizer.
func NewLinearizer(categories CategoryLookup) *Linearizer {
	return &Linearizer{categories: categories}
}

// Ancestors returns the ancestors of a category, nearest first, stopping at
// and excluding the navigation root. The walk performs one lookup per level
// and is bounded against cyclic parent chains: category data is untrusted, so
// already-visited IDs terminate the walk instead of looping.
//
// A lookup failure returns the ancestors collected so far along with the
// error, letting callers degrade to a truncated path.
func (l *Linearizer) Ancestors(ctx context.Context, cat *domain.Category, rootID string) ([]domain.Category, error) {
	var ancestors []domain.Category

	visited := map[string]bool{cat.ID: true}
	current := cat

	for !current.IsRootOf(rootID) {
		parentID := *current.ParentID
		if visited[parentID] {
			return ancestors, fmt.Errorf("cyclic category parent chain at %s", parentID)
		}
		visited[parentID] = true

		parent, err := l.categories.GetCategory(ctx, parentID)
		if err != nil {
			return ancestors, fmt.Errorf("get ancestor category %s: %w", parentID, err)
		}

		ancestors = append(ancestors, *parent)
		current = parent
	}

	return ancestors, nil
}
