package dto

// PriceResponse is the body of GET /price.
type PriceResponse struct {
	Price int64 `json:"price"`
}

// OrderRequest is the body of POST /order.
type OrderRequest struct {
	Type    string `json:"type"`
	Account string `json:"account"`
	Code    string `json:"code"`
	Amount  int64  `json:"amount"`
	Price   int64  `json:"price"`
	Token   string `json:"token"`
}

// OrderResponse reports the terminal state of a placed order.
type OrderResponse struct {
	Success bool   `json:"success"`
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// QuantityResponse is the body of GET /fetch_quantity.
type QuantityResponse struct {
	Quantity int64 `json:"quantity"`
}

// ClearOrdersRequest is the body of POST /clear_orders.
type ClearOrdersRequest struct {
	Account string `json:"account"`
	Code    string `json:"code"`
	Token   string `json:"token"`
}

// ClearOrdersResponse lists the outcome of a reconciliation pass.
type ClearOrdersResponse struct {
	Message   string   `json:"message"`
	Attempted int      `json:"attempted"`
	Cancelled []string `json:"cancelled"`
	Failed    []string `json:"failed"`
}

// EvaluationResponse is the body of GET /fetch_eval.
type EvaluationResponse struct {
	Evaluation int64 `json:"evaluation"`
}
