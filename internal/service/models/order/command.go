package order

// CreateItemModel is one requested line of a new order.
type CreateItemModel struct {
	ProductID int64
	Quantity  int
}

// CreateOrderModel carries everything needed to place an order.
type CreateOrderModel struct {
	ClientID    int64
	TableNumber int
	Comment     string
	CreatedBy   int64
	Items       []CreateItemModel
}

// UpdateStatusModel moves an order to a new status.
type UpdateStatusModel struct {
	ClientID int64
	OrderID  int64
	Status   string
}
