// Package gemini implements [murmur.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming uses the SDK's
// iter.Seq2 iterator, wrapped into the pull-based [murmur.Stream]
// interface. Gemini has no server-side conversations, so streams never
// carry a conversation id.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 8192
)
