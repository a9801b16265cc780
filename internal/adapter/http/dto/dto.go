package dto

// CheckoutRequest is the request body for checkout-session creation.
type CheckoutRequest struct {
	ReferenceID string `json:"reference_id,omitempty" binding:"omitempty,max=100"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Currency    string `json:"currency,omitempty" binding:"omitempty,len=3"`
	Description string `json:"description" binding:"required,max=255"`
}

// CheckoutResponse is the response body for a created checkout session.
type CheckoutResponse struct {
	URL string `json:"url"`
}
