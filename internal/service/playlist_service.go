package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aurify/api/internal/config"
	"github.com/aurify/api/internal/jsonutil"
	"github.com/aurify/api/internal/model"
)

// ModelClient defines the completion operations the generation pipeline
// needs from the vision model API
type ModelClient interface {
	VisionCompletion(ctx context.Context, prompt, imageURL string, maxTokens int) (string, error)
	IsConfigured() bool
}

// PlaylistGenerator defines the interface for playlist generation
type PlaylistGenerator interface {
	Generate(ctx context.Context, req *model.GenerationRequest) (*model.PlaylistResult, error)
}

// PlaylistService turns an image reference into a themed playlist: it builds
// the prompt, invokes the vision model once, and normalizes whatever came
// back onto the published response schema.
type PlaylistService struct {
	modelClient ModelClient
	songCount   int
	version     model.SchemaVersion
	maxTokens   int
}

// NewPlaylistService creates a new playlist service backed by the given
// model client
func NewPlaylistService(modelClient ModelClient, playlistCfg *config.PlaylistConfig, openaiCfg *config.OpenAIConfig) *PlaylistService {
	version := model.SchemaV2
	if playlistCfg.SchemaVersion == string(model.SchemaV1) {
		version = model.SchemaV1
	}
	songCount := playlistCfg.SongCount
	if songCount == 0 {
		songCount = model.DefaultSongCount
	}
	maxTokens := openaiCfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}
	return &PlaylistService{
		modelClient: modelClient,
		songCount:   songCount,
		version:     version,
		maxTokens:   maxTokens,
	}
}

// strictJSONInstruction is appended on the single re-prompt after the model
// returned unparsable output.
const strictJSONInstruction = "\n\nYour previous reply was not valid JSON. Respond with ONLY the JSON object. No prose, no markdown, no code fences."

// Generate runs the full pipeline once for one request
func (s *PlaylistService) Generate(ctx context.Context, req *model.GenerationRequest) (*model.PlaylistResult, error) {
	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, fmt.Errorf("%w: image_url", model.ErrInput)
	}

	spec := model.NewPromptSpec(s.songCount, s.version)

	// Use mock response if client is not configured
	if s.modelClient == nil || !s.modelClient.IsConfigured() {
		return s.generateMock(spec), nil
	}

	prompt := buildPrompt(req, spec)

	raw, err := s.modelClient.VisionCompletion(ctx, prompt, req.ImageURL, s.maxTokens)
	if err != nil {
		return nil, err
	}

	result, err := normalize(raw, spec)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, model.ErrInvalidModelOutput) {
		return nil, err
	}

	// One bounded re-prompt with a stricter JSON-only instruction before
	// giving up.
	log.Printf("[Playlist] unparsable model output, re-prompting once: %v", err)
	raw, err = s.modelClient.VisionCompletion(ctx, prompt+strictJSONInstruction, req.ImageURL, s.maxTokens)
	if err != nil {
		return nil, err
	}
	return normalize(raw, spec)
}

// buildPrompt renders the instruction text for one request. Pure and
// deterministic: the image itself never appears here, it travels to the
// model as a separate image_url content part. Every required field name and
// the genre vocabulary are spelled out because natural language is the only
// schema-enforcement channel available.
func buildPrompt(req *model.GenerationRequest, spec model.PromptSpec) string {
	genres := make([]string, len(spec.GenreVocabulary))
	for i, g := range spec.GenreVocabulary {
		genres[i] = string(g)
	}

	var b strings.Builder
	b.WriteString("You are a music curator. Look at the attached image and design a themed playlist that captures its atmosphere.\n\n")
	b.WriteString("Return a single JSON object with exactly these fields:\n")
	b.WriteString("- \"description\": two or three sentences describing what is in the image\n")
	b.WriteString("- \"playlistTitle\": a short, evocative playlist name\n")
	b.WriteString(fmt.Sprintf("- \"genre\": the single best-fitting genre, chosen from: %s\n", strings.Join(genres, ", ")))
	b.WriteString("- \"subgenre\": a more specific subgenre within that genre\n")
	if spec.Version == model.SchemaV2 {
		b.WriteString("- \"mood\": one or two words for the overall mood of the image\n")
	}
	b.WriteString(fmt.Sprintf("- \"songlist\": an array of exactly %d objects, each with \"title\", \"artist\" and a short \"reason\" explaining why the song fits the image\n", spec.SongCount))
	b.WriteString("\nOptional field:\n")
	b.WriteString("- \"music\": include only if the image depicts an identifiable artist, band or piece of music, and name it; otherwise omit the field entirely\n")
	b.WriteString("\nEvery song must be a real, existing recording by a real artist. Do not invent songs.\n")

	if req.Artists != "" {
		b.WriteString(fmt.Sprintf("\nThe listener's favorite artists are: %s. Bias the song selection toward these artists and artists similar to them.\n", req.Artists))
	}

	b.WriteString("\nRespond with JSON only. Do not wrap the JSON in markdown code fences.")
	return b.String()
}

// playlistPayload is the lenient decode target for model output: every
// field is optional here so a missing field degrades to its zero value
// instead of failing the request. Anything the model invented beyond these
// fields is dropped on the floor.
type playlistPayload struct {
	Description   string `json:"description"`
	PlaylistTitle string `json:"playlistTitle"`
	Music         string `json:"music"`
	Genre         string `json:"genre"`
	Subgenre      string `json:"subgenre"`
	Mood          string `json:"mood"`
	Songlist      []struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
		Reason string `json:"reason"`
	} `json:"songlist"`
}

// normalize parses the completion text (stripping a markdown fence if the
// model wrapped its reply in one) and projects it onto the published
// response schema.
func normalize(raw string, spec model.PromptSpec) (*model.PlaylistResult, error) {
	var payload playlistPayload
	if err := jsonutil.Parse(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidModelOutput, err)
	}

	songs := make([]model.SongEntry, 0, len(payload.Songlist))
	for _, s := range payload.Songlist {
		if s.Title == "" || s.Artist == "" {
			continue
		}
		songs = append(songs, model.SongEntry{
			Title:  s.Title,
			Artist: s.Artist,
			Reason: s.Reason,
		})
	}

	result := &model.PlaylistResult{
		Description:   payload.Description,
		PlaylistTitle: payload.PlaylistTitle,
		Music:         payload.Music,
		Genre:         payload.Genre,
		Subgenre:      payload.Subgenre,
		Songlist:      songs,
	}
	if spec.Version == model.SchemaV2 {
		result.Mood = payload.Mood
	}

	return result, nil
}

// generateMock returns a deterministic playlist for development and testing
// when no API key is configured
func (s *PlaylistService) generateMock(spec model.PromptSpec) *model.PlaylistResult {
	songs := []model.SongEntry{
		{Title: "Harvest Moon", Artist: "Neil Young", Reason: "Warm golden light, unhurried pace"},
		{Title: "Banana Pancakes", Artist: "Jack Johnson", Reason: "Lazy-morning comfort"},
		{Title: "Holocene", Artist: "Bon Iver", Reason: "Wide open stillness"},
		{Title: "Vienna", Artist: "Billy Joel", Reason: "Reflective, cinematic calm"},
		{Title: "Landslide", Artist: "Fleetwood Mac", Reason: "Gentle, nostalgic mood"},
	}

	result := &model.PlaylistResult{
		Description:   "A quiet scene bathed in soft golden light, with long shadows and a still, unhurried atmosphere.",
		PlaylistTitle: "Golden Hour Drift",
		Genre:         string(model.GenreFolk),
		Subgenre:      "indie folk",
		Songlist:      songs,
	}
	if spec.Version == model.SchemaV2 {
		result.Mood = "serene"
	}
	return result
}
