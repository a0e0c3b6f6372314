package recommend

// Recommendation is one similar title enriched with its representative book.
type Recommendation struct {
	Title    string
	Author   string
	ImageURL string
	Price    int
	Score    float64
}

// PopularBook is a highly rated title with its rating aggregate.
type PopularBook struct {
	Title      string
	Author     string
	ImageURL   string
	NumRatings int
	AvgRating  float64
}
