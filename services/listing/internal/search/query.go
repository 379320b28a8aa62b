package search

import (
	"fmt"

	"estate-market/services/listing/internal/entity"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query is a repository listing request: the shared Filter plus the
// dimensions only the store can answer, and paging.
type Query struct {
	Filter
	MinBathrooms *float64
	City         string
	State        string
	Status       entity.Status
	AllStatuses  bool
	SellerID     string
	Featured     *bool
	Sort         SortOrder
	Limit        int
	Offset       int
}

// Resolve applies visibility and paging defaults for v. Without an explicit
// status non-admins see active listings only, while admins see everything.
// Non-admins may only ask for publicly visible statuses.
func (q Query) Resolve(v entity.Viewer) (Query, error) {
	if q.Status != "" && !q.Status.Valid() {
		return q, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidInput, q.Status)
	}

	switch {
	case q.Status != "":
		if !v.IsAdmin() && !q.Status.Public() {
			return q, fmt.Errorf("%w: status %s is not public", entity.ErrForbidden, q.Status)
		}
		q.AllStatuses = false
	case v.IsAdmin():
		q.AllStatuses = true
	default:
		q.Status = entity.StatusActive
		q.AllStatuses = false
	}

	return q.withPaging(), nil
}

// ForSeller lists one seller's own listings in every status.
func (q Query) ForSeller(sellerID string) Query {
	q.SellerID = sellerID
	q.AllStatuses = q.Status == ""
	return q.withPaging()
}

func (q Query) withPaging() Query {
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Matches is the in-memory form of the query's predicate, paging aside.
func (q Query) Matches(l *entity.Listing) bool {
	if !q.AllStatuses && q.Status != "" && l.Status != q.Status {
		return false
	}
	if q.SellerID != "" && l.SellerID != q.SellerID {
		return false
	}
	if q.Featured != nil && l.Featured != *q.Featured {
		return false
	}
	if q.MinBathrooms != nil && l.Bathrooms < *q.MinBathrooms {
		return false
	}
	if q.City != "" && !containsFold(l.City, q.City) {
		return false
	}
	if q.State != "" && !containsFold(l.State, q.State) {
		return false
	}
	return q.Filter.Matches(l)
}
