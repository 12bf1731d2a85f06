package domain

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role
	Content string
}

type ChatRequest struct {
	Model       string
	Messages    []Turn
	MaxTokens   int
	Temperature float32
}
