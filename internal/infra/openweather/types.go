package openweather

import "errors"

type coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type currentResponse struct {
	Coord   coordinates `json:"coord"`
	Weather []condition `json:"weather"`
	Main    struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []condition `json:"weather"`
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c condition) empty() bool { return c.Main == "" && c.Description == "" }

func firstCondition(list []condition) condition {
	if len(list) == 0 {
		return condition{}
	}
	return list[0]
}

// validate rejects success bodies that decoded but carry no usable conditions.
func (r currentResponse) validate() error {
	if r.Name == "" {
		return errors.New("current conditions missing city name")
	}
	if len(r.Weather) == 0 {
		return errors.New("current conditions missing weather entries")
	}
	return nil
}
