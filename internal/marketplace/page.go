package marketplace

// PageSize is fixed by the backend's list pagination.
const PageSize = 10

// Page is the backend's list envelope. Next and Previous are opaque page
// references to be followed as-is, not parsed.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// TotalPages derives the page count from the result count, ceil(count/10).
func (p Page[T]) TotalPages() int {
	if p.Count <= 0 {
		return 0
	}
	return (p.Count + PageSize - 1) / PageSize
}

func (p Page[T]) HasNext() bool     { return p.Next != nil && *p.Next != "" }
func (p Page[T]) HasPrevious() bool { return p.Previous != nil && *p.Previous != "" }
