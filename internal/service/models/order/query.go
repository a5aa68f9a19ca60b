package order

// QueryOrdersModel represents filter parameters for querying orders
type QueryOrdersModel struct {
	ClientID     int64
	Ids          []int64
	Statuses     []Status
	TableNumbers []int
	Limit        int
	Offset       int
}

// ListOrdersModel carries the raw list filters a client may send.
// Zero values mean no filter.
type ListOrdersModel struct {
	ClientID    int64
	Status      string
	Category    string
	TableNumber int
	Limit       int
	Offset      int
}
