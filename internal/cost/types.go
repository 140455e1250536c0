package cost

import "time"

// Summary is the ML-service cost view for a period.
type Summary struct {
	TotalCost   float64       `json:"totalCost"`
	Currency    string        `json:"currency"`
	Period      Period        `json:"period"`
	Services    []ServiceCost `json:"services"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

// Period is the time window cost data covers.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// ServiceCost is the spend of a single service.
type ServiceCost struct {
	Service string  `json:"service"`
	Cost    float64 `json:"cost"`
}

// DailyCost is one day of spend.
type DailyCost struct {
	Date time.Time `json:"date"`
	Cost float64   `json:"cost"`
}

// ServiceDetail breaks one service's spend down by usage type.
type ServiceDetail struct {
	Service    string      `json:"service"`
	TotalCost  float64     `json:"totalCost"`
	Period     Period      `json:"period"`
	UsageTypes []UsageCost `json:"usageTypes"`
}

// UsageCost is the spend of a single usage type within a service.
type UsageCost struct {
	UsageType string  `json:"usageType"`
	Cost      float64 `json:"cost"`
}

// Forecast holds the Cost Explorer spend projections.
type Forecast struct {
	EstimatedEndOfMonth float64 `json:"estimatedEndOfMonth"`
	EstimatedNextMonth  float64 `json:"estimatedNextMonth"`
}
