package azureopenai

import (
	"fmt"
	"os"
	"strings"
)

const schoolDataPlaceholder = "{school_data}"

// PromptTemplate is the SYSTEM:/USER: split prompt file the batch fills
// with one school's rendered data per call.
type PromptTemplate struct {
	raw string
}

func LoadPromptTemplate(path string) (*PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	tpl := &PromptTemplate{raw: string(data)}
	if _, _, err := tpl.split(tpl.raw); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (t *PromptTemplate) split(filled string) (system, user string, err error) {
	const systemMarker = "SYSTEM:"
	const userMarker = "USER:"

	systemStart := strings.Index(filled, systemMarker)
	userStart := strings.Index(filled, userMarker)
	if systemStart == -1 || userStart == -1 || userStart < systemStart {
		return "", "", fmt.Errorf("prompt template must contain SYSTEM: and USER: markers in order")
	}
	system = strings.TrimSpace(filled[systemStart+len(systemMarker) : userStart])
	user = strings.TrimSpace(filled[userStart+len(userMarker):])
	return system, user, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// Payload substitutes the school data into the template and builds the
// chat-completions request body.
func (t *PromptTemplate) Payload(schoolData string, maxTokens int, temperature float64) (chatRequest, error) {
	filled := strings.ReplaceAll(t.raw, schoolDataPlaceholder, schoolData)
	system, user, err := t.split(filled)
	if err != nil {
		return chatRequest{}, err
	}
	return chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}
