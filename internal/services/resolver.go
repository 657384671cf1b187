package services

import (
	"context"
	"strings"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

// resolvedLine is a cart line bound to exactly one product. Lines naming the
// same product are merged into one resolvedLine.
type resolvedLine struct {
	Product  domain.Product
	Label    string
	Quantity int64
}

// resolveLines binds every cart line to a product with at most two catalog
// reads. The first line that cannot be resolved decides the error.
func resolveLines(ctx context.Context, catalog repository.CatalogRepository, lines []domain.CartLine) ([]resolvedLine, error) {
	var ids, names []string
	for _, l := range lines {
		if l.ProductID != "" {
			ids = append(ids, l.ProductID)
		} else {
			names = append(names, l.Name)
		}
	}

	byID := map[string]domain.Product{}
	if len(ids) > 0 {
		found, err := catalog.FindByIDs(ctx, ids)
		if err != nil {
			return nil, storageErr(ctx, err)
		}
		for _, p := range found {
			byID[p.ID] = p
		}
	}

	byName := map[string][]domain.Product{}
	if len(names) > 0 {
		found, err := catalog.FindByNames(ctx, names)
		if err != nil {
			return nil, storageErr(ctx, err)
		}
		for _, p := range found {
			byName[p.Name] = append(byName[p.Name], p)
		}
	}

	out := make([]resolvedLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		var p domain.Product
		if l.ProductID != "" {
			found, ok := byID[l.ProductID]
			if !ok {
				return nil, domain.ProductNotFound(l.Label())
			}
			p = found
		} else {
			found, err := pickByName(l.Name, byName[l.Name], "")
			if err != nil {
				return nil, err
			}
			p = found
		}

		if i, seen := index[p.ID]; seen {
			out[i].Quantity += l.Quantity
			continue
		}
		index[p.ID] = len(out)
		label := p.Name
		if label == "" {
			label = l.Label()
		}
		out = append(out, resolvedLine{Product: p, Label: label, Quantity: l.Quantity})
	}
	return out, nil
}

// pickByName applies the single-match rule to the products sharing a name,
// optionally narrowed to one category.
func pickByName(name string, matches []domain.Product, category domain.Category) (domain.Product, error) {
	if category != "" {
		narrowed := matches[:0:0]
		for _, p := range matches {
			if p.Category == category {
				narrowed = append(narrowed, p)
			}
		}
		matches = narrowed
	}
	switch len(matches) {
	case 0:
		return domain.Product{}, domain.ProductNotFound(name)
	case 1:
		return matches[0], nil
	}
	cats := make([]domain.Category, 0, len(matches))
	for _, p := range matches {
		cats = append(cats, p.Category)
	}
	return domain.Product{}, domain.AmbiguousProduct(name, cats)
}

func normalizeName(s string) string {
	return strings.TrimSpace(s)
}
