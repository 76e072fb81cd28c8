package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codescout/internal/research"
)

// fakeModel scripts GenerateContent responses. When streamChunks is set the
// response is also delivered through the caller's streaming func, the way
// real providers do.
type fakeModel struct {
	responses    []string
	err          error
	streamChunks []string

	calls   int
	prompts []string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.StreamingFunc != nil {
		for _, chunk := range m.streamChunks {
			if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}

	if len(m.responses) == 0 {
		return &llms.ContentResponse{}, nil
	}
	out := m.responses[0]
	m.responses = m.responses[1:]
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: out}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

func newTestSuite(t *testing.T, model llms.Model) *Suite {
	t.Helper()
	suite, err := NewWithModel(model, Config{RequestsPerSecond: 1000}, zap.NewNop())
	require.NoError(t, err)
	return suite
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "openai",
			cfg:  Config{Name: ProviderOpenAI, APIKey: "sk-test"},
		},
		{
			name: "googleai",
			cfg:  Config{Name: ProviderGoogleAI, APIKey: "key"},
		},
		{
			name: "anthropic",
			cfg:  Config{Name: ProviderAnthropic, APIKey: "key"},
		},
		{
			name:    "unknown provider",
			cfg:     Config{Name: "cohere", APIKey: "key"},
			wantErr: true,
		},
		{
			name:    "missing api key",
			cfg:     Config{Name: ProviderOpenAI},
			wantErr: true,
		},
		{
			name:    "negative temperature",
			cfg:     Config{Name: ProviderOpenAI, APIKey: "k", Temperature: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewWithModel_RequiresModel(t *testing.T) {
	_, err := NewWithModel(nil, Config{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerateQueries(t *testing.T) {
	model := &fakeModel{responses: []string{"```json\n" + `{
		"queries": [
			{"query": "jwt middleware validation", "research_goal": "find token checks"},
			{"query": "session store", "research_goal": "find session persistence"}
		]
	}` + "\n```"}}
	suite := newTestSuite(t, model)

	queries, err := suite.GenerateQueries(context.Background(), "How does auth work?", []string{"tokens are JWTs"}, 5)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "jwt middleware validation", queries[0].Query)
	assert.Equal(t, "find token checks", queries[0].Goal)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "How does auth work?")
	assert.Contains(t, model.prompts[0], "tokens are JWTs")
}

func TestGenerateQueries_TruncatesToMax(t *testing.T) {
	model := &fakeModel{responses: []string{`{"queries": [
		{"query": "a", "research_goal": "ga"},
		{"query": "b", "research_goal": "gb"},
		{"query": "c", "research_goal": "gc"}
	]}`}}
	suite := newTestSuite(t, model)

	queries, err := suite.GenerateQueries(context.Background(), "q", nil, 2)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "b", queries[1].Query)
}

func TestGenerateQueries_MalformedResponse(t *testing.T) {
	model := &fakeModel{responses: []string{"I could not produce JSON, sorry."}}
	suite := newTestSuite(t, model)

	_, err := suite.GenerateQueries(context.Background(), "q", nil, 3)
	assert.Error(t, err)
}

func TestGenerateQueries_ModelError(t *testing.T) {
	wantErr := errors.New("upstream down")
	model := &fakeModel{err: wantErr}
	suite := newTestSuite(t, model)

	_, err := suite.GenerateQueries(context.Background(), "q", nil, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestExtract(t *testing.T) {
	model := &fakeModel{responses: []string{`{
		"learnings": ["handlers live in internal/http", "auth uses middleware"],
		"follow_up_questions": ["where are routes registered?"]
	}`}}
	suite := newTestSuite(t, model)

	docs := []research.Document{
		{Path: "internal/http/server.go", Content: "func NewServer() {}", Score: 0.9},
	}
	got, err := suite.Extract(context.Background(), "http handlers", docs, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"handlers live in internal/http", "auth uses middleware"}, got.Learnings)
	assert.Equal(t, []string{"where are routes registered?"}, got.FollowUps)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "internal/http/server.go")
	assert.Contains(t, model.prompts[0], "func NewServer() {}")
}

func TestExtract_TruncatesToLimits(t *testing.T) {
	model := &fakeModel{responses: []string{`{
		"learnings": ["l1", "l2", "l3", "l4"],
		"follow_up_questions": ["f1", "f2", "f3"]
	}`}}
	suite := newTestSuite(t, model)

	docs := []research.Document{{Path: "a.go", Content: "code"}}
	got, err := suite.Extract(context.Background(), "q", docs, 3, 2)
	require.NoError(t, err)
	assert.Len(t, got.Learnings, 3)
	assert.Len(t, got.FollowUps, 2)
}

func TestExtract_EmptyDocsSkipsModel(t *testing.T) {
	model := &fakeModel{}
	suite := newTestSuite(t, model)

	got, err := suite.Extract(context.Background(), "q", nil, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, got.Learnings)
	assert.Empty(t, got.FollowUps)
	assert.Zero(t, model.calls)

	got, err = suite.Extract(context.Background(), "q", []research.Document{{Path: "a.go", Content: "   "}}, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, got.Learnings)
	assert.Zero(t, model.calls)
}

func TestSynthesizeReport_Streams(t *testing.T) {
	model := &fakeModel{
		responses:    []string{"# Report\n\nFindings."},
		streamChunks: []string{"# Report\n\n", "Findings."},
	}
	suite := newTestSuite(t, model)

	var chunks []string
	report, err := suite.SynthesizeReport(context.Background(), "q", []string{"l1"}, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "# Report\n\nFindings.", report)
	assert.Equal(t, []string{"# Report\n\n", "Findings."}, chunks)
}

func TestSynthesizeReport_NonStreamingFallback(t *testing.T) {
	model := &fakeModel{responses: []string{"# Report\n\nWhole thing at once."}}
	suite := newTestSuite(t, model)

	var chunks []string
	report, err := suite.SynthesizeReport(context.Background(), "q", []string{"l1"}, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "# Report\n\nWhole thing at once.", report)
	require.Len(t, chunks, 1)
	assert.Equal(t, report, chunks[0])
}

func TestSynthesizeReport_ModelError(t *testing.T) {
	wantErr := errors.New("stream reset")
	model := &fakeModel{err: wantErr}
	suite := newTestSuite(t, model)

	_, err := suite.SynthesizeReport(context.Background(), "q", []string{"l1"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestUnmarshalResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "bare json", raw: `{"queries": []}`},
		{name: "fenced json", raw: "```json\n{\"queries\": []}\n```"},
		{name: "fenced without language", raw: "```\n{\"queries\": []}\n```"},
		{name: "json with preamble", raw: "Here you go:\n{\"queries\": []}\nHope that helps."},
		{name: "no json at all", raw: "nothing here", wantErr: true},
		{name: "empty", raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				Queries []research.CandidateQuery `json:"queries"`
			}
			err := unmarshalResponse(tt.raw, &payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPromptsCarryContract(t *testing.T) {
	qp := queryPrompt("how does caching work", []string{"uses redis"}, 4)
	assert.Contains(t, qp, "how does caching work")
	assert.Contains(t, qp, "uses redis")
	assert.Contains(t, qp, `"queries"`)

	ep := extractionPrompt("cache eviction", []research.Document{{Path: "cache.go", Content: "func Evict()"}}, 3, 2)
	assert.Contains(t, ep, "cache.go")
	assert.Contains(t, ep, `"learnings"`)
	assert.Contains(t, ep, `"follow_up_questions"`)

	rp := reportPrompt("how does caching work", []string{"uses redis", "ttl is 5m"})
	assert.Contains(t, rp, "how does caching work")
	assert.True(t, strings.Contains(rp, "uses redis") && strings.Contains(rp, "ttl is 5m"))
}
