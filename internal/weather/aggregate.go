package weather

// MaxForecastDays is how many calendar-day buckets a forecast keeps.
const MaxForecastDays = 5

// AggregateForecast folds an ordered list of timestamped samples into at most
// MaxForecastDays calendar-day buckets. The first sample seen for a UTC date
// opens the bucket with its full field set; every later sample on the same
// date only tightens temp_min/temp_max. Buckets are kept in first-occurrence
// order and the feed is not re-sorted, so a feed starting mid-day keeps that
// partial day as its first bucket.
func AggregateForecast(city, country string, samples []ForecastSample) ForecastBundle {
	buckets := make(map[string]*DayBucket)
	var order []string

	for _, s := range samples {
		date := s.Timestamp.UTC().Format("2006-01-02")

		b, ok := buckets[date]
		if !ok {
			b = &DayBucket{
				Date:        date,
				TempMin:     s.TempMin,
				TempMax:     s.TempMax,
				Description: s.Description,
				Icon:        s.Icon,
				Humidity:    s.Humidity,
				WindSpeed:   s.WindSpeed,
			}
			buckets[date] = b
			order = append(order, date)
		}

		if s.TempMin < b.TempMin {
			b.TempMin = s.TempMin
		}
		if s.TempMax > b.TempMax {
			b.TempMax = s.TempMax
		}
		b.Samples++
	}

	if len(order) > MaxForecastDays {
		order = order[:MaxForecastDays]
	}

	days := make([]DayBucket, 0, len(order))
	for _, date := range order {
		days = append(days, *buckets[date])
	}

	return ForecastBundle{
		City:      city,
		Country:   country,
		Forecasts: days,
	}
}
