package weather

import "time"

// Snapshot is the normalized view of one city's weather at fetch time.
type Snapshot struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Latitude    float64   `json:"lat"`
	Longitude   float64   `json:"lon"`
	Temperature float64   `json:"temperature"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	AQI         int       `json:"aqi"`
	MinTemp     float64   `json:"minTemp"`
	MaxTemp     float64   `json:"maxTemp"`
	Visibility  float64   `json:"visibility"`
	Sunrise     string    `json:"sunrise"`
	Sunset      string    `json:"sunset"`
	DayLength   string    `json:"dayLength"`
	DayParts    []DayPart `json:"dayParts"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// DayPart is a coarse projection for one slice of the coming day.
type DayPart struct {
	Label       string  `json:"label"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
}

// AQILabel names the 1-5 air quality scale.
func AQILabel(aqi int) string {
	switch aqi {
	case 1:
		return "good"
	case 2:
		return "fair"
	case 3:
		return "moderate"
	case 4:
		return "poor"
	case 5:
		return "very poor"
	default:
		return "unknown"
	}
}

// QuotaStatus reports the daily upstream budget.
type QuotaStatus struct {
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resetsAt"`
}
