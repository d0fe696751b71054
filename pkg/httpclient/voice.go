package httpclient

import (
	"context"
	"io"
	"net/http"
	"strings"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	types "github.com/mutablelogic/go-divyavaani/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Transcribe converts recorded speech into question text, submitted as
// multipart form data.
func (c *Client) Transcribe(ctx context.Context, req schema.TranscribeRequest) (*schema.TranscribeResponse, error) {
	if req.Audio.Path == "" || req.Audio.Body == nil {
		return nil, divyavaani.ErrBadParameter.With("missing audio")
	}
	if language, err := types.NormaliseLanguage(req.Language); err != nil {
		return nil, divyavaani.ErrBadParameter.With(err)
	} else {
		req.Language = language
	}

	// Create request
	payload, err := client.NewMultipartRequest(req, client.ContentTypeJson)
	if err != nil {
		return nil, err
	}

	// Perform request
	var response schema.TranscribeResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("voice", "transcribe"), client.OptNoTimeout()); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}

// Speak synthesizes speech for the text and writes the audio to w. Use
// WithVoice to select a voice, WithLanguage to set the language and
// WithFormat to choose the audio container.
func (c *Client) Speak(ctx context.Context, w io.Writer, text string, opts ...opt.Opt) error {
	if strings.TrimSpace(text) == "" {
		return divyavaani.ErrBadParameter.With("missing text")
	}

	// Apply options
	o, err := opt.Apply(opts...)
	if err != nil {
		return err
	}

	// Assemble the request
	req := schema.SpeakRequest{
		Text:   text,
		Voice:  o.GetString(opt.VoiceKey),
		Format: o.GetString(opt.FormatKey),
	}
	if language, err := types.NormaliseLanguage(o.GetString(opt.LanguageKey)); err != nil {
		return divyavaani.ErrBadParameter.With(err)
	} else {
		req.Language = language
	}

	// Create request
	payload, err := client.NewJSONRequestEx(http.MethodPost, req, client.ContentTypeBinary)
	if err != nil {
		return err
	}

	// Perform request, writing the audio to w
	return c.DoWithContext(ctx, payload, w, client.OptPath("voice", "speak"))
}

// ListVoices returns the voices available for speech synthesis. Use
// WithLanguage to filter by language.
func (c *Client) ListVoices(ctx context.Context, opts ...opt.Opt) (*schema.ListVoicesResponse, error) {
	// Apply options
	o, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("voice", "voices")}
	if q := o.Query(opt.LanguageKey); len(q) > 0 {
		reqOpts = append(reqOpts, client.OptQuery(q))
	}

	// Perform request
	var response schema.ListVoicesResponse
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}
