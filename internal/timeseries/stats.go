package timeseries

import (
	"math"

	"github.com/weathervane/backend/internal/db/models"
)

// Stats computes today-style aggregate statistics over a set of samples.
// Averages are arithmetic means, not time-weighted.
func Stats(samples []models.WeatherSample) models.TodayStats {
	if len(samples) == 0 {
		return models.TodayStats{}
	}

	temps := values(samples, func(s models.WeatherSample) float64 { return s.Temperature })
	humidities := values(samples, func(s models.WeatherSample) float64 { return s.Humidity })

	return models.TodayStats{
		TempAvg:      round1(meanOf(temps)),
		TempMin:      round1(minOf(temps)),
		TempMax:      round1(maxOf(temps)),
		HumidityAvg:  round1(meanOf(humidities)),
		HumidityMin:  round1(minOf(humidities)),
		HumidityMax:  round1(maxOf(humidities)),
		PressureAvg:  round1(mean(samples, func(s models.WeatherSample) float64 { return s.Pressure })),
		WindSpeedAvg: round1(mean(samples, func(s models.WeatherSample) float64 { return s.WindSpeed })),
		SampleCount:  len(samples),
	}
}

func values(samples []models.WeatherSample, field func(models.WeatherSample) float64) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		out = append(out, field(s))
	}
	return out
}

func mean(samples []models.WeatherSample, field func(models.WeatherSample) float64) float64 {
	return meanOf(values(samples, field))
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func minOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func maxOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
