package dto

// PlaceRecord is the normalized result of a places lookup.
type PlaceRecord struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Rating      string `json:"rating"` // "N/A" when the place has no rating
	RatingCount int    `json:"rating_count"`
}

// SearchRecord is one normalized web search snippet.
type SearchRecord struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}
