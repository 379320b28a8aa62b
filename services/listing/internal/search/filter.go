package search

import (
	"strings"

	"estate-market/services/listing/internal/entity"
)

// Filter narrows a listing collection. Every set dimension must match; a nil
// bound or empty string leaves that dimension unconstrained, so zero is a
// usable bound.
type Filter struct {
	Search       string
	PropertyType entity.PropertyType
	ListingType  entity.ListingType
	Bedrooms     *int
	PriceMin     *int64
	PriceMax     *int64
	Location     string
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (f Filter) Matches(l *entity.Listing) bool {
	if f.Search != "" {
		if !containsFold(l.Title, f.Search) && !containsFold(l.City, f.Search) && !containsFold(l.State, f.Search) {
			return false
		}
	}
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.ListingType != "" && l.ListingType != f.ListingType {
		return false
	}
	if f.Bedrooms != nil && l.Bedrooms < *f.Bedrooms {
		return false
	}
	if f.PriceMin != nil && l.PriceCents < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && l.PriceCents > *f.PriceMax {
		return false
	}
	if f.Location != "" {
		if !containsFold(l.City, f.Location) && !containsFold(l.State, f.Location) && !containsFold(l.PostalCode, f.Location) {
			return false
		}
	}
	return true
}

// Apply returns the matching listings in their original order.
func Apply(listings []*entity.Listing, f Filter) []*entity.Listing {
	out := make([]*entity.Listing, 0, len(listings))
	for _, l := range listings {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}
