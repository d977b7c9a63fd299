package manifest

// ComputeMetrics folds records into per-classification counters.
func ComputeMetrics(records []Record) Metrics {
	m := Metrics{
		TotalFiles:      len(records),
		FilesByYear:     make(map[int]int),
		FilesByPS:       make(map[string]int),
		FilesByCategory: make(map[string]int),
		FilesByStage:    make(map[string]int),
	}
	for _, r := range records {
		m.FilesByYear[r.Year]++
		m.FilesByPS[r.PoliceStation.String()]++
		m.FilesByCategory[string(r.Category)]++
		m.FilesByStage[string(r.StageTag)]++
	}
	return m
}
