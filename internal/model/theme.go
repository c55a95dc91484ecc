package model

// Theme is a short daily prompt phrase shown to end users as a creative cue.
// A theme id lives in exactly one of the active/archived collections at any
// time; the move between them is atomic.
type Theme struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ThemeSource indicates which collection a selected theme came from. Themes
// drawn from the archive (degraded mode, active pool empty) are not moved.
type ThemeSource string

const (
	ThemeSourceActive   ThemeSource = "active"
	ThemeSourceArchived ThemeSource = "archived"
)

// EmailConfig is the operator alert sender credential pair, stored in the
// config collection rather than the environment so it can be rotated without
// a redeploy.
type EmailConfig struct {
	Sender   string `json:"sender"`
	Password string `json:"password"`
}
