package domain

// PutParams holds the contract parameters of a European put option
type PutParams struct {
	Strike   float64 `json:"strike" validate:"gt=0"`
	Rate     float64 `json:"rate"`
	Yield    float64 `json:"yield"`
	Maturity float64 `json:"maturity" validate:"gt=0"`
	Sigma    float64 `json:"sigma" validate:"gt=0"`
}

// PutQuote is the model price of a put at a given spot
type PutQuote struct {
	Spot  float64 `json:"spot"`
	Price float64 `json:"price"`
}
