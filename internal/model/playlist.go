package model

// GenerationRequest represents the request body for playlist generation
type GenerationRequest struct {
	ImageURL string `json:"image_url" validate:"required,min=1"`
	Artists  string `json:"artists" validate:"omitempty,max=500"`
}

// SongEntry represents a single song in a generated playlist
type SongEntry struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Reason string `json:"reason,omitempty"`
}

// PlaylistResult represents the caller-facing playlist generation response.
// Optional fields (music, mood) are omitted when the model did not supply
// them; everything else degrades to an empty value rather than an error.
type PlaylistResult struct {
	Description   string      `json:"description"`
	PlaylistTitle string      `json:"playlistTitle"`
	Music         string      `json:"music,omitempty"`
	Genre         string      `json:"genre"`
	Subgenre      string      `json:"subgenre"`
	Mood          string      `json:"mood,omitempty"`
	Songlist      []SongEntry `json:"songlist"`
}

// ErrorResult is the error-as-value response shape. Both success and error
// bodies are returned with a 200 status so clients branch only on the
// presence of the "error" key, never on transport status.
type ErrorResult struct {
	Error string `json:"error"`
}
