package engine

// EstimateResult holds the size of a job before it runs.
type EstimateResult struct {
	JobName          string
	Table            string
	MatchingRows     int64
	BatchSize        int
	EstimatedBatches int64
	Columns          []string
	ExcludedColumns  []string
}

// EstimateBatches returns ceil(rows/batchSize), the number of fetches the
// iterator makes for rows matching rows.
func EstimateBatches(rows int64, batchSize int) int64 {
	if rows <= 0 || batchSize <= 0 {
		return 0
	}
	b := int64(batchSize)
	return (rows + b - 1) / b
}
