package search

import (
	"fmt"
	"sort"

	"estate-market/services/listing/internal/entity"
)

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(s); order {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh:
		return order, nil
	default:
		return "", fmt.Errorf("%w: unknown sort %q", entity.ErrInvalidInput, s)
	}
}

// Sort returns a stably sorted copy; the input slice is left as is.
func Sort(listings []*entity.Listing, order SortOrder) []*entity.Listing {
	out := make([]*entity.Listing, len(listings))
	copy(out, listings)

	var less func(a, b *entity.Listing) bool
	switch order {
	case SortOldest:
		less = func(a, b *entity.Listing) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPriceLow:
		less = func(a, b *entity.Listing) bool { return a.PriceCents < b.PriceCents }
	case SortPriceHigh:
		less = func(a, b *entity.Listing) bool { return a.PriceCents > b.PriceCents }
	default:
		less = func(a, b *entity.Listing) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// OrderClause is the SQL ORDER BY for a sort order. id breaks ties so pages are stable.
func OrderClause(order SortOrder) string {
	switch order {
	case SortOldest:
		return "listings.created_at ASC, listings.id ASC"
	case SortPriceLow:
		return "listings.price_cents ASC, listings.created_at DESC, listings.id ASC"
	case SortPriceHigh:
		return "listings.price_cents DESC, listings.created_at DESC, listings.id ASC"
	default:
		return "listings.created_at DESC, listings.id ASC"
	}
}
