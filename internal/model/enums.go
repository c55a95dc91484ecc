package model

// Genre types — the controlled vocabulary offered to the model. The prompt
// enumerates these verbatim; normalization stays lenient and passes through
// whatever the model returned.
type Genre string

const (
	GenrePop        Genre = "pop"
	GenreRock       Genre = "rock"
	GenreHiphop     Genre = "hiphop"
	GenreRnb        Genre = "rnb"
	GenreElectronic Genre = "electronic"
	GenreJazz       Genre = "jazz"
	GenreCountry    Genre = "country"
	GenreFolk       Genre = "folk"
	GenreClassical  Genre = "classical"
	GenreLatin      Genre = "latin"
	GenreReggae     Genre = "reggae"
	GenreBlues      Genre = "blues"
)

var ValidGenres = []Genre{
	GenrePop, GenreRock, GenreHiphop, GenreRnb, GenreElectronic,
	GenreJazz, GenreCountry, GenreFolk, GenreClassical, GenreLatin,
	GenreReggae, GenreBlues,
}

// SchemaVersion selects the playlist response schema revision. V1 predates
// the mood field; V2 requests it. Normalization tolerates both regardless.
type SchemaVersion string

const (
	SchemaV1 SchemaVersion = "v1"
	SchemaV2 SchemaVersion = "v2"
)

// Song count bounds for a playlist request
const (
	MinSongCount     = 5
	MaxSongCount     = 40
	DefaultSongCount = 20
)
