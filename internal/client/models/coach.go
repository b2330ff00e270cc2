package models

// Coach chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type CoachMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CoachRequest struct {
	Messages []CoachMessage `json:"messages"`
}

type CoachAnswer struct {
	Answer string `json:"answer"`
}
