package httpclient

import (
	"time"

	// Packages
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithLimit sets the maximum number of results to return.
// If limit is nil, any existing limit is removed.
func WithLimit(limit *uint) opt.Opt {
	if limit == nil {
		return opt.SetAny(opt.LimitKey, nil)
	}
	return opt.SetUint(opt.LimitKey, *limit)
}

// WithOffset sets the pagination offset.
// If offset is 0, any existing offset is removed.
func WithOffset(offset uint) opt.Opt {
	if offset == 0 {
		return opt.SetAny(opt.OffsetKey, nil)
	}
	return opt.SetUint(opt.OffsetKey, offset)
}

// WithLanguage sets the preferred response language.
func WithLanguage(language string) opt.Opt {
	return opt.SetString(opt.LanguageKey, language)
}

// WithUser overrides the user identity for a request.
func WithUser(user string) opt.Opt {
	return opt.SetString(opt.UserKey, user)
}

// WithConversation continues an existing conversation.
func WithConversation(id string) opt.Opt {
	return opt.SetString(opt.ConversationKey, id)
}

// WithSources requests source citations with the answer.
func WithSources() opt.Opt {
	return opt.SetBool(opt.SourcesKey, true)
}

// WithThinking requests progress narration while the answer is prepared.
func WithThinking() opt.Opt {
	return opt.SetBool(opt.ThinkingKey, true)
}

// WithStream delivers each decoded event to the callback as it arrives,
// in addition to the accumulated response.
func WithStream(fn func(schema.StreamEvent)) opt.Opt {
	return opt.SetAny(opt.StreamKey, fn)
}

// WithCategory filters results by category.
func WithCategory(category string) opt.Opt {
	return opt.SetString(opt.CategoryKey, category)
}

// WithSince sets the start of a reporting window.
func WithSince(since time.Time) opt.Opt {
	return opt.SetString(opt.SinceKey, since.Format(time.RFC3339))
}

// WithVoice selects a voice for speech synthesis.
func WithVoice(voice string) opt.Opt {
	return opt.SetString(opt.VoiceKey, voice)
}

// WithFormat sets the audio output format for speech synthesis.
func WithFormat(format string) opt.Opt {
	return opt.SetString(opt.FormatKey, format)
}
