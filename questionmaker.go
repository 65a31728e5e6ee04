package dailyquiz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Generator produces a raw batch of questions
type Generator interface {
	GenerateQuestions(ctx context.Context) ([]RawQuestion, error)
}

// QuestionMaker generates the daily batch through an OpenAI-compatible
// chat-completions endpoint (OpenRouter by default)
type QuestionMaker struct {
	client      *openai.Client
	hasKey      bool
	model       string
	temperature float32
	maxTokens   int
	llmLog      *LLMLogger
}

// NewQuestionMaker creates a question maker from the AI section of the config.
// llmLog may be nil.
func NewQuestionMaker(cfg AIConfig, llmLog *LLMLogger) *QuestionMaker {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	headers := map[string]string{}
	if cfg.Referer != "" {
		headers["HTTP-Referer"] = cfg.Referer
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
	}

	return &QuestionMaker{
		client:      openai.NewClientWithConfig(clientConfig),
		hasKey:      cfg.APIKey != "",
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		llmLog:      llmLog,
	}
}

// headerTransport adds fixed headers to every outgoing request
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// GenerateQuestions makes a single chat completion call and parses the
// question array out of the reply. There are no retries; any failure is
// logged and returned so the caller can fall back.
func (qm *QuestionMaker) GenerateQuestions(ctx context.Context) ([]RawQuestion, error) {
	start := time.Now()
	questions, err := qm.generate(ctx)
	generationDuration.Observe(time.Since(start).Seconds())

	result := generationResult(err)
	generationTotal.WithLabelValues(result).Inc()
	qm.llmLog.LogGenerationResult(result, len(questions), err)

	if err != nil {
		logger.Warn("Question generation failed", zap.String("result", result), zap.Error(err))
		return nil, err
	}

	logger.Info("Generated questions", zap.Int("count", len(questions)), zap.Duration("took", time.Since(start)))
	return questions, nil
}

func (qm *QuestionMaker) generate(ctx context.Context) ([]RawQuestion, error) {
	if !qm.hasKey {
		return nil, ErrMissingAPIKey
	}

	prompt := qm.buildPrompt(uuid.NewString())
	qm.llmLog.LogLLMRequest("QuestionMaker", prompt)
	VerboseLog("Requesting questions from %s", qm.model)

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: qm.model,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert quiz generator. Your response must be a valid JSON array, strictly adhering to the user's required structure.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: qm.temperature,
			MaxTokens:   qm.maxTokens,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: status %s: %w", ErrTransport, statusOf(err), err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrNoContent
	}

	text := resp.Choices[0].Message.Content
	qm.llmLog.LogLLMResponse("QuestionMaker", text)

	questions, err := ParseQuestions(text)
	if err != nil {
		logger.Debug("Unparseable model output", zap.String("raw", text))
		return nil, err
	}
	return questions, nil
}

// statusOf extracts the HTTP status from a go-openai error, if it has one
func statusOf(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Sprint(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return fmt.Sprint(reqErr.HTTPStatusCode)
	}
	return "N/A"
}

func (qm *QuestionMaker) buildPrompt(seed string) string {
	var sb strings.Builder

	sb.WriteString("Generate exactly 4 multiple-choice questions for CSE technical interview level:\n\n")
	sb.WriteString("- 2 aptitude questions: Focused on Quantitative Ability and Logical Reasoning from the following topics: ")
	sb.WriteString("Sequences & Series, Permutations & Combinations, Probability, Geometry, Mensuration, Statistics, ")
	sb.WriteString("Blood Relations, Directions, Clocks & Calendars, Cubes, Coding & Decoding, Cryptarithmetic, and Non Verbal Reasoning.\n")
	sb.WriteString("- 2 technical questions: Focused on Core Computer Science concepts such as Data Structures, Algorithms, ")
	sb.WriteString("Operating Systems, and Database Management Systems.\n\n")

	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Each question must have exactly 4 options (A, B, C, D).\n")
	sb.WriteString("2. The correct answer must be randomly placed among the options; do not always put it at A.\n")
	sb.WriteString("3. Provide one correct answer only.\n")
	sb.WriteString("4. Provide a detailed explanation for why the correct answer is correct, between 50 and 100 words.\n")
	sb.WriteString("5. Include a 'sub_category' field identifying the specific topic (e.g., 'Probability', 'Operating Systems').\n")
	sb.WriteString("6. Format the output strictly as a JSON list like this:\n\n")
	sb.WriteString(`[
  {
    "type": "aptitude or technical",
    "sub_category": "Topic Name Here",
    "question": "question text",
    "options": {
      "A": "option text",
      "B": "option text",
      "C": "option text",
      "D": "option text"
    },
    "answer": "A/B/C/D",
    "explanation": "Detailed explanation (50-100 WORDS)"
  }
]`)
	sb.WriteString("\n\nDo not include any text outside the JSON. Ensure that the options for each question are shuffled.\n")

	sb.WriteString(fmt.Sprintf("\n--- Request Seed: %s ---", seed))
	return sb.String()
}
