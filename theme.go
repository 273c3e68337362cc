package murmur

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values. A negative
// index means no color.
type Theme struct {
	UserMsg   int // User message accent
	Assistant int // Assistant name label
	Error     int // Error messages
	Success   int // Connection / status indicators
	Muted     int // Status bar, placeholders, code gutters
	Accent    int // Headings, conversation id
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:   4,
		Assistant: 6,
		Error:     1,
		Success:   2,
		Muted:     8,
		Accent:    5,
	}
}
