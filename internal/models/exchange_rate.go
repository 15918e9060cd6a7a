package models

// RateQuery holds the raw query parameters of a rate request.
type RateQuery struct {
	From string `validate:"required"`
	To   string `validate:"required"`
	Date string
}

// RateData is the payload of a successful rate response.
// swagger:model RateData
type RateData struct {
	// example: USD
	From string `json:"from"`
	// example: EUR
	To string `json:"to"`
	// example: 0.93400000
	Rate string `json:"rate"`
	// example: 2023-01-01
	Date string `json:"date"`
	// example: 1700000000
	Timestamp int64 `json:"timestamp"`
	// example: PROVIDER
	Source string `json:"source"`
}

// RateResponse represents a successful rate response
// swagger:model RateResponse
type RateResponse struct {
	Success bool     `json:"success"`
	Data    RateData `json:"data"`
	// Set when the cache layer degraded but the rate was still resolved
	Warning string `json:"warning,omitempty"`
}

// ErrorResponse represents any failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	Success bool `json:"success"`
	// example: Bad Request
	Error string `json:"error"`
	// example: VALIDATION_ERROR
	Code string `json:"code,omitempty"`
	// example: Missing required parameters
	Message string `json:"message"`
}

// CurrenciesResponse lists the provider's reference currencies
// swagger:model CurrenciesResponse
type CurrenciesResponse struct {
	Success    bool     `json:"success"`
	Provider   string   `json:"provider"`
	Currencies []string `json:"currencies"`
}

// ProviderStatusResponse reports provider liveness
// swagger:model ProviderStatusResponse
type ProviderStatusResponse struct {
	Success   bool   `json:"success"`
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
}

// HealthResponse is returned by the liveness probe
// swagger:model HealthResponse
type HealthResponse struct {
	// example: ok
	Status string `json:"status"`
}
