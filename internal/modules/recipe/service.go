package recipe

import "strings"

// Catalog searches an in-memory recipe list.
type Catalog struct {
	recipes []Recipe
}

// NewCatalog returns a catalog over recipes, or the built-in list when nil.
func NewCatalog(recipes []Recipe) *Catalog {
	if recipes == nil {
		recipes = defaultRecipes
	}
	return &Catalog{recipes: recipes}
}

func (c *Catalog) All() []Recipe {
	return append([]Recipe(nil), c.recipes...)
}

// Search matches query against recipe names and ingredients. An empty query
// or a query with no hits returns the whole list.
func (c *Catalog) Search(query string) []Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}
	var out []Recipe
	for _, r := range c.recipes {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return c.All()
	}
	return out
}

func matches(r Recipe, q string) bool {
	name := strings.ToLower(r.Name)
	if strings.Contains(name, q) || strings.Contains(q, name) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), q) {
			return true
		}
	}
	return false
}
