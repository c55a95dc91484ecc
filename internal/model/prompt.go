package model

// PromptSpec describes what the model must produce for one generation
// request: the required/optional field set, the song-count target, the genre
// vocabulary and the schema revision. It is built fresh per request and has
// no identity beyond its content.
type PromptSpec struct {
	RequiredFields  []string
	OptionalFields  []string
	SongCount       int
	GenreVocabulary []Genre
	Version         SchemaVersion
}

// NewPromptSpec builds the prompt spec for the given song count and schema
// version, clamping the count into the supported range.
func NewPromptSpec(songCount int, version SchemaVersion) PromptSpec {
	if songCount < MinSongCount {
		songCount = MinSongCount
	}
	if songCount > MaxSongCount {
		songCount = MaxSongCount
	}

	required := []string{"description", "playlistTitle", "genre", "subgenre", "songlist"}
	if version == SchemaV2 {
		required = []string{"description", "playlistTitle", "genre", "subgenre", "mood", "songlist"}
	}

	return PromptSpec{
		RequiredFields:  required,
		OptionalFields:  []string{"music"},
		SongCount:       songCount,
		GenreVocabulary: ValidGenres,
		Version:         version,
	}
}
