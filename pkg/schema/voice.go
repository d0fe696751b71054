package schema

import (
	// Packages
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TranscribeRequest represents a request to transcribe spoken audio.
// Sent as multipart/form-data with the audio part and form fields.
type TranscribeRequest struct {
	Audio    client.File `json:"audio" help:"Audio file to transcribe"`
	Language string      `json:"language,omitempty" help:"Spoken language hint" optional:""`
}

// TranscribeResponse represents transcribed audio
type TranscribeResponse struct {
	Text       string  `json:"text"`
	Language   string  `json:"language,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Duration   float64 `json:"duration_seconds,omitempty"`
}

// SpeakRequest represents a request to synthesise speech from text
type SpeakRequest struct {
	Text     string `json:"text" arg:"" help:"Text to speak"`
	Voice    string `json:"voice,omitempty" help:"Voice name" optional:""`
	Language string `json:"language,omitempty" help:"Speech language" optional:""`
	Format   string `json:"format,omitempty" help:"Audio output format" optional:"" enum:"mp3,wav,ogg," default:"mp3"`
}

// Voice describes a speech synthesis voice offered by the service
type Voice struct {
	Name        string `json:"name"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// ListVoicesResponse represents a response containing the available voices
type ListVoicesResponse struct {
	Count uint    `json:"count"`
	Body  []Voice `json:"body,omitzero"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r TranscribeResponse) String() string {
	return types.Stringify(r)
}

func (v Voice) String() string {
	return types.Stringify(v)
}

func (r ListVoicesResponse) String() string {
	return types.Stringify(r)
}
