package timeseries

import (
	"sort"
	"time"

	"github.com/weathervane/backend/internal/db/models"
)

// HourlyBuckets groups samples into 1-hour buckets keyed by truncating
// observed_at to the hour. Hours with no samples are omitted; the result is
// a sparse sequence ordered ascending by bucket time, capped at maxBuckets
// newest buckets.
func HourlyBuckets(samples []models.WeatherSample, maxBuckets int) []models.HourlyPoint {
	if len(samples) == 0 {
		return []models.HourlyPoint{}
	}

	groups := make(map[time.Time][]models.WeatherSample)
	for _, s := range samples {
		key := s.ObservedAt.UTC().Truncate(time.Hour)
		groups[key] = append(groups[key], s)
	}

	keys := sortedKeysDesc(groups)
	if maxBuckets > 0 && len(keys) > maxBuckets {
		keys = keys[:maxBuckets]
	}

	points := make([]models.HourlyPoint, 0, len(keys))
	for _, key := range keys {
		bucket := groups[key]
		points = append(points, models.HourlyPoint{
			Hour:        key,
			Temperature: round1(mean(bucket, func(s models.WeatherSample) float64 { return s.Temperature })),
			Humidity:    round1(mean(bucket, func(s models.WeatherSample) float64 { return s.Humidity })),
			WindSpeed:   round1(mean(bucket, func(s models.WeatherSample) float64 { return s.WindSpeed })),
			Condition:   DominantCondition(bucket),
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Hour.Before(points[j].Hour) })
	return points
}

// DailyBuckets groups samples into calendar-day (UTC) buckets. Empty days
// are omitted; the result is ordered ascending by date, capped at maxBuckets
// newest days.
func DailyBuckets(samples []models.WeatherSample, maxBuckets int) []models.DailyPoint {
	if len(samples) == 0 {
		return []models.DailyPoint{}
	}

	groups := make(map[string][]models.WeatherSample)
	for _, s := range samples {
		key := s.ObservedAt.UTC().Format("2006-01-02")
		groups[key] = append(groups[key], s)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if maxBuckets > 0 && len(keys) > maxBuckets {
		keys = keys[:maxBuckets]
	}

	points := make([]models.DailyPoint, 0, len(keys))
	for _, key := range keys {
		bucket := groups[key]
		temps := values(bucket, func(s models.WeatherSample) float64 { return s.Temperature })
		points = append(points, models.DailyPoint{
			Date:        key,
			TempAvg:     round1(meanOf(temps)),
			TempMin:     round1(minOf(temps)),
			TempMax:     round1(maxOf(temps)),
			HumidityAvg: round1(mean(bucket, func(s models.WeatherSample) float64 { return s.Humidity })),
			Condition:   DominantCondition(bucket),
			SampleCount: len(bucket),
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// DominantCondition returns the most frequent condition_main in the bucket.
// On a tie the condition observed earliest within the bucket wins, which
// keeps the result deterministic regardless of input order.
func DominantCondition(samples []models.WeatherSample) string {
	if len(samples) == 0 {
		return ""
	}

	sorted := make([]models.WeatherSample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ObservedAt.Before(sorted[j].ObservedAt)
	})

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, s := range sorted {
		counts[s.ConditionMain]++
		if _, ok := firstSeen[s.ConditionMain]; !ok {
			firstSeen[s.ConditionMain] = i
		}
	}

	best := sorted[0].ConditionMain
	for cond, count := range counts {
		if count > counts[best] || (count == counts[best] && firstSeen[cond] < firstSeen[best]) {
			best = cond
		}
	}

	return best
}

func sortedKeysDesc(groups map[time.Time][]models.WeatherSample) []time.Time {
	keys := make([]time.Time, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].After(keys[j]) })
	return keys
}
