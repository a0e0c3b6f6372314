package rating

// Event is one observed rating joined against the catalog.
// A zero value is a real observation, not a missing marker.
type Event struct {
	userID string
	isbn   string
	title  string
	value  float64
}

// New creates a rating event.
func New(userID, isbn, title string, value float64) Event {
	return Event{userID: userID, isbn: isbn, title: title, value: value}
}

// UserID returns the rating user.
func (e *Event) UserID() string { return e.userID }

// ISBN returns the rated book identifier.
func (e *Event) ISBN() string { return e.isbn }

// Title returns the title the ISBN resolved to at join time.
func (e *Event) Title() string { return e.title }

// Value returns the rating value.
func (e *Event) Value() float64 { return e.value }
