package orderitem

// QueryOrderItemsModel represents filter parameters for querying order items.
type QueryOrderItemsModel struct {
	ClientID   int64   `json:"clientId"`
	Ids        []int64 `json:"ids,omitempty"`
	OrderIds   []int64 `json:"orderIds,omitempty"`
	ProductIds []int64 `json:"productIds,omitempty"`
}
