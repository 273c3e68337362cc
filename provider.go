package murmur

import "context"

// Provider is a strategy pattern interface for chat backends.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Request is one chat turn sent to a backend.
type Request struct {
	Messages []ChatMessage

	// UserID identifies the end user to the backend.
	UserID string

	// ConversationID continues an existing backend conversation; empty
	// starts a new one and the backend assigns the id.
	ConversationID string

	// Selection is an optional app input; empty means omitted.
	Selection string
}

// LastContent returns the content of the final message, or "" when there
// are no messages.
func (r Request) LastContent() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

// Feedback is a rating for one assistant message.
type Feedback struct {
	MessageID string
	Rating    Rating
	User      string
	Content   string
}

// Rating is a feedback rating. The zero value revokes an earlier rating.
type Rating string

const (
	RatingNone    Rating = ""
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
)

// ParseRating maps user input to a Rating.
func ParseRating(s string) (Rating, bool) {
	switch Rating(s) {
	case RatingLike, RatingDislike:
		return Rating(s), true
	case "none", "null", RatingNone:
		return RatingNone, true
	}
	return RatingNone, false
}

// Parameters describes app inputs the backend accepts.
type Parameters struct {
	Variable      string
	SelectOptions []string
}

// FeedbackSender submits ratings for assistant messages. Failures are
// reported as false, never as errors.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, fb Feedback) bool
}

// ParameterSource fetches the backend's app parameters. Failures yield an
// empty Parameters.
type ParameterSource interface {
	Parameters(ctx context.Context) Parameters
}
