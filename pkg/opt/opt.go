/*
opt provides options which can be applied to queries, sessions and other
requests made through the client. Options are stored under well-known keys
and read back with typed accessors.
*/
package opt

import (
	"net/url"
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// A generic option type, which can set options on a query or session
type Opt func(*opts) error

// set of options
type opts struct {
	values map[string][]any
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Well-known option keys
const (
	LanguageKey     = "language"     // preferred response language
	UserKey         = "user_id"      // user identity override
	ConversationKey = "conversation" // conversation context for a query
	LimitKey        = "limit"        // pagination limit
	OffsetKey       = "offset"       // pagination offset
	SourcesKey      = "sources"      // include source citations
	ThinkingKey     = "thinking"     // include reasoning events
	StreamKey       = "stream"       // progressive delivery callback
	VoiceKey        = "voice"        // voice for speech synthesis
	FormatKey       = "format"       // output format
	CategoryKey     = "category"     // category filter
	SinceKey        = "since"        // start of a reporting window
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Apply returns a structure of applied options
func Apply(o ...Opt) (*opts, error) {
	opts := &opts{values: make(map[string][]any)}
	for _, opt := range o {
		if err := opt(opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Set replaces the values for key
func (o *opts) Set(key string, value any) {
	o.values[key] = []any{value}
}

// Add appends a value for key
func (o *opts) Add(key string, value any) {
	o.values[key] = append(o.values[key], value)
}

// Has returns true if the key exists
func (o *opts) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Get returns the first value for key, or nil if not set
func (o *opts) Get(key string) any {
	if values, ok := o.values[key]; ok && len(values) > 0 {
		return values[0]
	}
	return nil
}

// GetAll returns all values for key, or nil if not set
func (o *opts) GetAll(key string) []any {
	return o.values[key]
}

// GetString returns the trimmed string value for key, or empty string
// if not set
func (o *opts) GetString(key string) string {
	if value, ok := toString(o.Get(key)); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// GetStringArray returns all values for key as strings, each trimmed
func (o *opts) GetStringArray(key string) []string {
	values, ok := o.values[key]
	if !ok {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		if value, ok := toString(v); ok {
			result = append(result, strings.TrimSpace(value))
		}
	}
	return result
}

// GetBool returns the boolean value for key, or true if the key is
// present with a non-boolean value
func (o *opts) GetBool(key string) bool {
	if !o.Has(key) {
		return false
	}
	if v, ok := o.Get(key).(bool); ok {
		return v
	}
	return true
}

// GetFloat64 returns the float64 value for key, or 0 if not set or invalid
func (o *opts) GetFloat64(key string) float64 {
	switch v := o.Get(key).(type) {
	case float64:
		return v
	case uint:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if value, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return value
		}
	}
	return 0
}

// GetUint returns the uint value for key, or 0 if not set or invalid
func (o *opts) GetUint(key string) uint {
	switch v := o.Get(key).(type) {
	case uint:
		return v
	case int:
		if v >= 0 {
			return uint(v)
		}
	case string:
		if value, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			return uint(value)
		}
	}
	return 0
}

// Query returns the values for the given keys as url query parameters.
// Values which cannot be represented as strings are omitted.
func (o *opts) Query(keys ...string) url.Values {
	query := make(url.Values)
	for _, key := range keys {
		for _, v := range o.values[key] {
			if value, ok := toString(v); ok {
				query.Add(key, value)
			}
		}
	}
	return query
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// Error returns an option that always returns an error
func Error(err error) Opt {
	return func(o *opts) error {
		return err
	}
}

// WithOpts combines multiple options into a single option
func WithOpts(options ...Opt) Opt {
	return func(o *opts) error {
		for _, opt := range options {
			if err := opt(o); err != nil {
				return err
			}
		}
		return nil
	}
}

// SetString replaces the value for key
func SetString(key, value string) Opt {
	return func(o *opts) error {
		o.Set(key, value)
		return nil
	}
}

// AddString appends values for key
func AddString(key string, value ...string) Opt {
	return func(o *opts) error {
		for _, v := range value {
			o.Add(key, v)
		}
		return nil
	}
}

// SetUint replaces the value for key
func SetUint(key string, value uint) Opt {
	return func(o *opts) error {
		o.Set(key, value)
		return nil
	}
}

// SetFloat64 replaces the value for key
func SetFloat64(key string, value float64) Opt {
	return func(o *opts) error {
		o.Set(key, value)
		return nil
	}
}

// SetBool replaces the value for key
func SetBool(key string, value bool) Opt {
	return func(o *opts) error {
		o.Set(key, value)
		return nil
	}
}

// SetAny replaces the value for key with an arbitrary value
func SetAny(key string, value any) Opt {
	return func(o *opts) error {
		o.Set(key, value)
		return nil
	}
}

// AddAny appends an arbitrary value for key
func AddAny(key string, value any) Opt {
	return func(o *opts) error {
		o.Add(key, value)
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// toString represents scalar values as strings
func toString(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}
