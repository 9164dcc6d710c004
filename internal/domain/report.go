package domain

// DateRange is an inclusive range of date keys.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains compares date keys lexicographically, which orders zero-padded
// YYYY-MM-DD strings by calendar date.
func (r DateRange) Contains(dateKey string) bool {
	return dateKey >= r.Start && dateKey <= r.End
}

// AnswerStats is the per-question answer tally of a bucket with derived rates.
type AnswerStats struct {
	Correct     int     `json:"correct"`
	Wrong       int     `json:"wrong"`
	Total       int     `json:"total"`
	RateCorrect float64 `json:"rateCorrect"`
	RateWrong   float64 `json:"rateWrong"`
}

// BucketStats holds the counts shared by daily and overall buckets.
type BucketStats struct {
	Participants int                        `json:"participants"`
	Served       map[QuestionID]int         `json:"served"`
	Answers      map[QuestionID]AnswerStats `json:"answers"`
	Success      int                        `json:"success"`
	Failure      int                        `json:"failure"`
}

// DailyStats is the bucket of a single date key.
type DailyStats struct {
	Date string `json:"date"`
	BucketStats
}

// Report is the result of aggregating the event log over a date range.
// Daily is sorted by ascending date.
type Report struct {
	Range   DateRange    `json:"range"`
	Daily   []DailyStats `json:"daily"`
	Overall BucketStats  `json:"overall"`
}
