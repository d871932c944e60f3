package azureopenai

import (
	"errors"
	"testing"
)

func TestParseCompletionValidBody(t *testing.T) {
	body := []byte(`{"choices":[{"message":{"content":"En fin skola."}}]}`)

	text, err := ParseCompletion(body)
	if err != nil {
		t.Fatalf("ParseCompletion() error = %v", err)
	}
	if text != "En fin skola." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestParseCompletionEmptyChoices(t *testing.T) {
	text, err := ParseCompletion([]byte(`{"choices":[]}`))
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v (text %q)", err, text)
	}
}

func TestParseCompletionMissingChoicesKey(t *testing.T) {
	_, err := ParseCompletion([]byte(`{"id":"cmpl-1","object":"chat.completion"}`))
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestParseCompletionBlankContent(t *testing.T) {
	_, err := ParseCompletion([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestParseCompletionNonJSONBody(t *testing.T) {
	_, err := ParseCompletion([]byte("<html>gateway error</html>"))
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestParseCompletionEmptyBody(t *testing.T) {
	_, err := ParseCompletion(nil)
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "## Skolan\ntext", "## Skolan\ntext"},
		{"markdown fence", "```markdown\n## Skolan\ntext\n```", "## Skolan\ntext"},
		{"bare fence", "```\n## Skolan\n```", "## Skolan"},
		{"whitespace around fence", "  ```md\nbody\n```  ", "body"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Fatalf("%s: stripCodeFences(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
