package chi

// ErrorCode is a machine-readable error identifier in error responses.
type ErrorCode string

const (
	ErrorCodeBadRequest    ErrorCode = "bad_request"
	ErrorCodeUnauthorized  ErrorCode = "unauthorized"
	ErrorCodeBookNotFound  ErrorCode = "book_not_found"
	ErrorCodeNotFound      ErrorCode = "not_found"
	ErrorCodeInternalError ErrorCode = "internal_error"
	ErrorCodeRateLimited   ErrorCode = "rate_limited"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"error"`
}

// RecommendationItem is one entry of GET /recommend.
type RecommendationItem struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	URL    string  `json:"url"`
	Price  int     `json:"price"`
	Score  float64 `json:"score"`
}

// RecommendResponse is the body of GET /recommend.
type RecommendResponse struct {
	Recommendations []RecommendationItem `json:"recommendations"`
}

// PopularItem is one entry of GET /popular.
type PopularItem struct {
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	URL        string  `json:"url"`
	NumRatings int     `json:"num_ratings"`
	AvgRating  float64 `json:"avg_rating"`
}

// PopularResponse is the body of GET /popular.
type PopularResponse struct {
	Books []PopularItem `json:"books"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
