package entity

type Stats struct {
	Total     int64 `json:"total"`
	Draft     int64 `json:"draft"`
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Sold      int64 `json:"sold"`
	Rented    int64 `json:"rented"`
	Suspended int64 `json:"suspended"`
	Rejected  int64 `json:"rejected"`
	Featured  int64 `json:"featured"`
}

// StatusCount is one row of a GROUP BY status, featured scan.
type StatusCount struct {
	Status   Status
	Featured bool
	Count    int64
}

func TallyStats(rows []StatusCount) Stats {
	var s Stats
	for _, row := range rows {
		s.Total += row.Count
		if row.Featured {
			s.Featured += row.Count
		}
		switch row.Status {
		case StatusDraft:
			s.Draft += row.Count
		case StatusPending:
			s.Pending += row.Count
		case StatusActive:
			s.Active += row.Count
		case StatusSold:
			s.Sold += row.Count
		case StatusRented:
			s.Rented += row.Count
		case StatusSuspended:
			s.Suspended += row.Count
		case StatusRejected:
			s.Rejected += row.Count
		}
	}
	return s
}
