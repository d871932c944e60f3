package azureopenai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyCompletion marks a syntactically valid response whose choices
// array is empty or whose message content is blank. The provider does
// this intermittently, so it is worth a retry.
var ErrEmptyCompletion = errors.New("empty completion in response")

// MalformedResponseError marks a body that is not the JSON shape the
// provider documents. Retrying the same request will not fix it.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed completion response: %s", e.Reason)
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseCompletion extracts the generated text from a raw chat-completions
// body. It never panics: every malformed shape maps to a classified
// error.
func ParseCompletion(body []byte) (string, error) {
	if len(body) == 0 {
		return "", &MalformedResponseError{Reason: "empty body"}
	}

	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &MalformedResponseError{Reason: "not valid JSON"}
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

var fencePattern = regexp.MustCompile(`(?is)^\s*` + "```" + `(?:[a-zA-Z0-9]+\s*\n)?(.*?)\n?` + "```" + `\s*$`)

// stripCodeFences unwraps completions the model wrapped in a fenced code
// block, a common artifact when asking for markdown output.
func stripCodeFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	if m := fencePattern.FindStringSubmatch(cleaned); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.Trim(cleaned, "`\n ")
}
