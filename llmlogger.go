package dailyquiz

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LLMLogger records every prompt sent to the model and every raw reply,
// so that malformed generations can be inspected after the fact.
type LLMLogger struct {
	out io.WriteCloser
	mu  sync.Mutex
}

// NewLLMLogger opens a size-rotated exchange log at path
func NewLLMLogger(path string) *LLMLogger {
	return newLLMLogger(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
}

func newLLMLogger(out io.WriteCloser) *LLMLogger {
	return &LLMLogger{out: out}
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	if ll == nil {
		return
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(ll.out, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(module, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", module)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(module, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", module)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogGenerationResult logs how a generation attempt ended
func (ll *LLMLogger) LogGenerationResult(result string, count int, err error) {
	if err != nil {
		ll.Logf("Generation %s: %v\n\n", result, err)
		return
	}
	ll.Logf("Generation %s: %d questions\n\n", result, count)
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	if ll == nil {
		return nil
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()
	return ll.out.Close()
}
