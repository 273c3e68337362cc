package murmur

// ChatMessage is one message of a conversation sent to a backend.
type ChatMessage struct {
	Role    Role
	Content string
}

// UserText returns a single user message.
func UserText(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}
