package openweather

import (
	"fmt"
	"time"

	"github.com/yanqian/wearcast/internal/domain/weather"
)

const (
	// 8 entries of a 3-hour forecast cover the next 24 hours.
	dayWindow       = 8
	minDayPartInput = 5
)

var dayPartSlots = []struct {
	index int
	label string
}{
	{0, "Morning"},
	{2, "Afternoon"},
	{4, "Evening"},
}

func buildSnapshot(current currentResponse, forecast forecastResponse, aqi int) weather.Snapshot {
	cond := firstCondition(current.Weather)
	snap := weather.Snapshot{
		City:        current.Name,
		Country:     current.Sys.Country,
		Latitude:    current.Coord.Lat,
		Longitude:   current.Coord.Lon,
		Temperature: current.Main.Temp,
		Condition:   cond.Main,
		Description: cond.Description,
		Humidity:    current.Main.Humidity,
		WindSpeed:   current.Wind.Speed,
		AQI:         aqi,
		Visibility:  float64(current.Visibility) / 1000,
		Sunrise:     localClock(current.Sys.Sunrise, current.Timezone),
		Sunset:      localClock(current.Sys.Sunset, current.Timezone),
		DayLength:   dayLength(current.Sys.Sunrise, current.Sys.Sunset),
		DayParts:    []weather.DayPart{},
	}

	snap.MinTemp, snap.MaxTemp = dailyRange(current, forecast.List)

	if len(forecast.List) >= minDayPartInput {
		for _, slot := range dayPartSlots {
			entry := forecast.List[slot.index]
			part := weather.DayPart{Label: slot.label, Temperature: entry.Main.Temp}
			if c := firstCondition(entry.Weather); !c.empty() {
				part.Condition = c.Main
			}
			snap.DayParts = append(snap.DayParts, part)
		}
	}
	return snap
}

func dailyRange(current currentResponse, entries []forecastEntry) (float64, float64) {
	if len(entries) < dayWindow {
		return current.Main.TempMin, current.Main.TempMax
	}
	lo, hi := entries[0].Main.TempMin, entries[0].Main.TempMax
	for _, entry := range entries[1:dayWindow] {
		if entry.Main.TempMin < lo {
			lo = entry.Main.TempMin
		}
		if entry.Main.TempMax > hi {
			hi = entry.Main.TempMax
		}
	}
	return lo, hi
}

// localClock renders a Unix timestamp as wall-clock time at the given UTC offset.
func localClock(unix int64, offsetSeconds int) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix+int64(offsetSeconds), 0).UTC().Format("15:04")
}

func dayLength(sunrise, sunset int64) string {
	if sunrise == 0 || sunset <= sunrise {
		return ""
	}
	d := time.Duration(sunset-sunrise) * time.Second
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
