// Package dify implements [murmur.Provider] for the Dify chat-messages API.
//
// Answers stream over SSE; each data line is a JSON event whose "event"
// field selects its kind. The package also submits message feedback and
// reads the app's input parameters.
package dify

import "encoding/json"

const (
	defaultBaseURL   = "https://api.dify.ai"
	chatMessagesPath = "/v1/chat-messages"
	parametersPath   = "/v1/parameters"
	responseMode     = "streaming"
)

// ChatRequest is the JSON body sent to the chat-messages endpoint.
type ChatRequest struct {
	Inputs         map[string]string `json:"inputs"`
	Query          string            `json:"query"`
	ResponseMode   string            `json:"response_mode"`
	User           string            `json:"user"`
	ConversationID string            `json:"conversation_id"`
}

// apiEvent is the union of all streamed event payloads.
type apiEvent struct {
	Event          string `json:"event"`
	Answer         string `json:"answer"`
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	TaskID         string `json:"task_id"`

	// error
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiErrorResponse is the JSON body returned on non-2xx HTTP responses.
type apiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type feedbackRequest struct {
	Rating  *string `json:"rating"`
	User    string  `json:"user"`
	Content string  `json:"content"`
}

type parametersResponse struct {
	UserInputForm []map[string]json.RawMessage `json:"user_input_form"`
}

type formControl struct {
	Variable string   `json:"variable"`
	Options  []string `json:"options"`
}

// informational events carry nothing the answer needs.
var informational = map[string]bool{
	"ping":              true,
	"workflow_started":  true,
	"workflow_finished": true,
	"node_started":      true,
	"node_finished":     true,
	"agent_thought":     true,
	"message_file":      true,
	"message_replace":   true,
	"tts_message":       true,
	"tts_message_end":   true,
}
