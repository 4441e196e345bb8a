// Package completion sends conversations to chat-completion services.
package completion

import (
	"context"
	"errors"
	"fmt"
)

// Defaults of the DeepSeek-compatible endpoint.
const (
	DefaultBaseURL     = "https://api.deepseek.com/v1/chat/completions"
	DefaultModel       = "deepseek-chat"
	DefaultMaxTokens   = 150
	DefaultTemperature = 0.7
)

// Roles understood by chat-completion services.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrAPIKeyMissing is returned when no API key is configured.
var ErrAPIKeyMissing = errors.New("completion api key is missing")

// RequestFailedError wraps transport failures and non-2xx responses.
// StatusCode is 0 when no response was received.
type RequestFailedError struct {
	StatusCode int
	Err        error
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("completion request failed: %v", e.Err)
	}
	return fmt.Sprintf("completion request failed with status %d: %v", e.StatusCode, e.Err)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Message is one turn sent to the service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a completion call. Zero MaxTokens and Temperature take the defaults.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

func (r Request) withDefaults() Request {
	if r.MaxTokens <= 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	if r.Temperature <= 0 {
		r.Temperature = DefaultTemperature
	}
	return r
}

// Completer returns the text of the first choice for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// KeyFunc resolves the API key at call time so that a key entered by the
// user takes effect without restarting.
type KeyFunc func(ctx context.Context) string

// StaticKey returns a KeyFunc that always yields key.
func StaticKey(key string) KeyFunc {
	return func(context.Context) string { return key }
}

// FirstKey returns a KeyFunc yielding the first non-empty key among fns.
func FirstKey(fns ...KeyFunc) KeyFunc {
	return func(ctx context.Context) string {
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if k := fn(ctx); k != "" {
				return k
			}
		}
		return ""
	}
}
