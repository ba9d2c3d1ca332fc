package appointments

// StatusCounts is the per-status booking summary. Counts are independent:
// cancelled appointments still count toward Total.
type StatusCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// ServiceUsage is one entry of the most-booked services ranking,
// aggregated over the snapshot name so renamed or retired services keep
// appearing under their historical name.
type ServiceUsage struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Report is the operational analytics summary.
type Report struct {
	Summary         StatusCounts   `json:"summary"`
	PopularServices []ServiceUsage `json:"popular_services"`
}

// topServicesLimit bounds the popular-services ranking.
const topServicesLimit = 5
