package groq

type message struct {
	Role    messageRole `json:"role"`
	Content string      `json:"content"`
}

type messageRole string

const (
	messageRoleSystem messageRole = "system"
	messageRoleUser   messageRole = "user"
)

func toMessages(instructions, prompt string) []message {
	messages := []message{}
	if instructions != "" {
		messages = append(messages, message{
			Role:    messageRoleSystem,
			Content: instructions,
		})
	}
	messages = append(messages, message{
		Role:    messageRoleUser,
		Content: prompt,
	})
	return messages
}
