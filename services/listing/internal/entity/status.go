package entity

import "fmt"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSold      Status = "sold"
	StatusRented    Status = "rented"
	StatusSuspended Status = "suspended"
	StatusRejected  Status = "rejected"
)

var AllStatuses = []Status{
	StatusDraft, StatusPending, StatusActive, StatusSold, StatusRented, StatusSuspended, StatusRejected,
}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Public reports whether anonymous visitors may see listings in this status.
func (s Status) Public() bool {
	return s == StatusActive || s == StatusSold || s == StatusRented
}

type actor uint8

const (
	byOwner actor = 1 << iota
	byAdmin
)

// Rejected listings go back to the seller for another try; suspended ones
// are taken down for good.
var transitions = map[Status]map[Status]actor{
	StatusDraft: {
		StatusPending: byOwner,
	},
	StatusPending: {
		StatusActive:    byAdmin,
		StatusRejected:  byAdmin,
		StatusSuspended: byAdmin,
	},
	StatusRejected: {
		StatusPending: byOwner,
	},
	StatusActive: {
		StatusSuspended: byAdmin,
		StatusSold:      byOwner | byAdmin,
		StatusRented:    byOwner | byAdmin,
	},
}

// CanTransition reports whether the lifecycle allows from -> to at all.
func CanTransition(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// NextStatuses lists the statuses reachable from s.
func NextStatuses(s Status) []Status {
	var next []Status
	for _, candidate := range AllStatuses {
		if CanTransition(s, candidate) {
			next = append(next, candidate)
		}
	}
	return next
}

// CheckTransition validates moving l to status `to` on behalf of v.
func CheckTransition(l *Listing, to Status, v Viewer) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	allowed, ok := transitions[l.Status][to]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, to)
	}
	if to == StatusSold && l.ListingType != ListingSale {
		return fmt.Errorf("%w: only sale listings can be sold", ErrInvalidTransition)
	}
	if to == StatusRented && l.ListingType != ListingRent {
		return fmt.Errorf("%w: only rent listings can be rented", ErrInvalidTransition)
	}

	if allowed&byAdmin != 0 && v.IsAdmin() {
		return nil
	}
	if allowed&byOwner != 0 && v.Owns(l) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s not permitted", ErrForbidden, l.Status, to)
}
