package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmoTheDev/zwischen/models"
)

func sampleFindings() []models.Finding {
	return []models.Finding{
		{
			Kind: models.KindSecret, Scanner: "gitleaks", Severity: models.SeverityCritical,
			Location: models.Location{File: ".env", Line: 3}, Message: "aws-access-key",
			RuleID: "aws-access-key", CodeSnippet: "AKIAEXAMPLE",
		},
		{
			Kind: models.KindVulnerability, Scanner: "semgrep", Severity: models.SeverityHigh,
			Location: models.Location{File: "db.go", Line: 40}, Message: "SQL injection",
			RuleID: "go.sqli",
		},
		{
			Kind: models.KindVulnerability, Scanner: "semgrep", Severity: models.SeverityLow,
			Location: models.Location{File: "h.py", Line: 9}, Message: "weak hash",
			RuleID: "py.md5", CodeSnippet: "hashlib.md5(x)\nreturn h",
		},
	}
}

// fakeProvider returns a canned reply.
type fakeProvider struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Submit(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.reply, f.err
}

func TestNewMapsEveryName(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")

	for name, want := range map[string]string{
		"ollama":    "ollama",
		"openai":    "openai",
		"anthropic": "anthropic",
		"claude":    "anthropic",
		"Claude ":   "anthropic",
	} {
		p, err := New(name, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, want, p.Name())
	}

	_, err := New("gemini", Options{})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNewFailsFastWithoutCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := New("openai", Options{})
	assert.ErrorIs(t, err, ErrMissingCredential)
	_, err = New("anthropic", Options{})
	assert.ErrorIs(t, err, ErrMissingCredential)

	p, err := New("openai", Options{APIKey: "sk-explicit"})
	require.NoError(t, err)
	assert.Equal(t, "sk-explicit", p.(*OpenAIProvider).apiKey)
}

func TestCredentialEnv(t *testing.T) {
	assert.Equal(t, "OPENAI_API_KEY", CredentialEnv("openai"))
	assert.Equal(t, "ANTHROPIC_API_KEY", CredentialEnv("claude"))
	assert.Empty(t, CredentialEnv("ollama"))
}

func TestOllamaSubmit(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"1\":{}}"},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllama(Options{URL: srv.URL + "/api/chat/", Model: "llama3.1"})
	reply, err := p.Submit(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, `{"1":{}}`, reply)
	assert.Equal(t, "llama3.1", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestOllamaDefaults(t *testing.T) {
	p := NewOllama(Options{})
	assert.Equal(t, "http://localhost:11434", p.baseURL)
	assert.Equal(t, "llama3", p.model)
}

func TestOllamaEmbeddedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model 'llama9' not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllama(Options{URL: srv.URL}).Submit(context.Background(), "x")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "not found")
}

func TestOpenAISubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAI(Options{APIKey: "sk-test", Endpoint: srv.URL})
	require.NoError(t, err)
	reply, err := p.Submit(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p, err := NewOpenAI(Options{APIKey: "sk-bad", Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = p.Submit(context.Background(), "prompt")

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
	assert.Equal(t, "Incorrect API key provided", perr.Message)
}

func TestAnthropicSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 4096, req.MaxTokens)
		assert.Equal(t, "claude-3-haiku-20240307", req.Model)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"analysis"}]}`))
	}))
	defer srv.Close()

	p, err := NewAnthropic(Options{APIKey: "sk-ant", Endpoint: srv.URL})
	require.NoError(t, err)
	reply, err := p.Submit(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "analysis", reply)
}

func TestAnthropicEmbeddedErrorOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	p, err := NewAnthropic(Options{APIKey: "k", Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = p.Submit(context.Background(), "prompt")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Overloaded", perr.Message)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleFindings(), Project{Type: "rails", Language: "ruby"})

	assert.Contains(t, prompt, "Project type: rails, Language: ruby")
	assert.Contains(t, prompt, "1. [CRITICAL] .env:3")
	assert.Contains(t, prompt, "2. [HIGH] db.go:40")
	assert.Contains(t, prompt, "3. [LOW] h.py:9")
	assert.Contains(t, prompt, "Rule: go.sqli")
	assert.Contains(t, prompt, "      hashlib.md5(x)\n      return h")
	assert.Contains(t, prompt, `"is_false_positive"`)
	assert.Contains(t, prompt, `"risk_explanation"`)

	assert.Contains(t, BuildPrompt(nil, Project{}), "Project type: unknown, Language: unknown")
}

func TestParseAnalysis(t *testing.T) {
	reply := "Sure! Here is my analysis:\n```json\n" +
		`{"1": {"priority": "high", "is_false_positive": false, "fix_suggestion": "rotate", "risk_explanation": "leak"}}` +
		"\n```\nLet me know {if} you need more."
	_, ok := ParseAnalysis(reply)
	assert.False(t, ok, "greedy span up to the last brace includes trailing prose")

	analysis, ok := ParseAnalysis("Here you go:\n" + `{"1": {"priority": "HIGH", "fix_suggestion": " rotate "}}` + "\nthanks")
	require.True(t, ok)
	assert.Equal(t, models.PriorityHigh, analysis["1"].Annotation().Priority)
	assert.Equal(t, "rotate", analysis["1"].Annotation().FixSuggestion)

	for _, bad := range []string{"", "no json here", "} backwards {", "{broken", `{"1": {"priority": "high"}`} {
		_, ok := ParseAnalysis(bad)
		assert.False(t, ok, "reply=%q", bad)
	}
}

func TestParseAnalysisSkipsKeysThatAreNotEntries(t *testing.T) {
	analysis, ok := ParseAnalysis(`{
		"1": {"priority": "high", "is_false_positive": true, "fix_suggestion": "rotate"},
		"2": "not an object",
		"3": {"is_false_positive": "yes"},
		"summary": "one real issue"
	}`)
	require.True(t, ok)
	assert.Len(t, analysis, 1)
	require.Contains(t, analysis, "1")
	assert.True(t, analysis["1"].IsFalsePositive)
	assert.Equal(t, "rotate", analysis["1"].FixSuggestion)
}

func TestAugmentIgnoresExtraTopLevelKeys(t *testing.T) {
	p := &fakeProvider{reply: `{"1": {"priority": "high", "is_false_positive": true, "fix_suggestion": "rotate"}, "summary": "one real issue"}`}

	got, err := Augment(context.Background(), p, sampleFindings(), Project{})
	require.NoError(t, err)

	require.NotNil(t, got[0].AI)
	assert.True(t, got[0].IsFalsePositive())
	assert.Equal(t, models.PriorityHigh, got[0].AI.Priority)
	assert.Nil(t, got[1].AI)
	assert.Nil(t, got[2].AI)
}

func TestAnnotateCorrelatesByOneBasedIndex(t *testing.T) {
	findings := sampleFindings()
	analysis := Analysis{
		"1": {Priority: "high", FixSuggestion: "rotate the key"},
		"3": {Priority: "low", IsFalsePositive: true},
	}

	got := Annotate(findings, analysis)

	require.Len(t, got, 3)
	require.NotNil(t, got[0].AI)
	assert.Equal(t, "rotate the key", got[0].AI.FixSuggestion)
	assert.Nil(t, got[1].AI)
	require.NotNil(t, got[2].AI)
	assert.True(t, got[2].IsFalsePositive())

	for i := range findings {
		assert.Nil(t, findings[i].AI, "input must not be modified")
		assert.Equal(t, findings[i].RuleID, got[i].RuleID)
	}
}

func TestAugmentWithoutBracesReturnsInput(t *testing.T) {
	findings := sampleFindings()
	p := &fakeProvider{reply: "I could not analyse these findings, sorry."}

	got, err := Augment(context.Background(), p, findings, Project{})

	require.NoError(t, err)
	assert.Equal(t, findings, got)
	assert.Equal(t, 1, p.calls)
}

func TestAugmentAnnotates(t *testing.T) {
	p := &fakeProvider{reply: `{"2": {"priority": "medium", "is_false_positive": true, "risk_explanation": "test fixture"}}`}

	got, err := Augment(context.Background(), p, sampleFindings(), Project{})
	require.NoError(t, err)

	assert.Nil(t, got[0].AI)
	require.NotNil(t, got[1].AI)
	assert.Equal(t, models.PriorityMedium, got[1].AI.Priority)
	assert.True(t, got[1].AI.IsFalsePositive)
	assert.Contains(t, p.prompt, "2. [HIGH] db.go:40")
}

func TestAugmentProviderFailure(t *testing.T) {
	findings := sampleFindings()
	p := &fakeProvider{err: &ProviderError{Provider: "fake", StatusCode: 500, Message: "boom"}}

	got, err := Augment(context.Background(), p, findings, Project{})

	require.Error(t, err)
	var perr *ProviderError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, findings, got)
}

func TestAugmentEmptySkipsProvider(t *testing.T) {
	p := &fakeProvider{reply: "{}"}
	got, err := Augment(context.Background(), p, nil, Project{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, p.calls)
}

func TestParseAIDebugEnv(t *testing.T) {
	for value, want := range map[string][2]bool{
		"all":     {true, true},
		"TRUE":    {true, true},
		"prompts": {false, true},
		"none":    {false, false},
		"":        {false, false},
		"bogus":   {false, false},
	} {
		t.Setenv("ZWISCHEN_AI_DEBUG", value)
		debug, prompts := parseAIDebugEnv()
		assert.Equal(t, want, [2]bool{debug, prompts}, "value=%q", value)
	}
}

func TestProviderErrorMessage(t *testing.T) {
	assert.Equal(t, "OpenAI API error 429: slow down",
		(&ProviderError{Provider: "OpenAI", StatusCode: 429, Message: "slow down"}).Error())
	assert.True(t, strings.HasPrefix((&ProviderError{Provider: "Ollama", Message: "x"}).Error(), "Ollama error"))
}
