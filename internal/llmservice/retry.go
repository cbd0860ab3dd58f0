package llmservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"assessment-rag/internal/models"
)

const (
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 5 * time.Second
)

// RetryPolicy bounds generation attempts. Timeout applies to each attempt.
type RetryPolicy struct {
	MaxRetries int
	Timeout    time.Duration
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	base, maxDelay := p.BaseDelay, p.MaxDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	d := base << attempt
	if d <= 0 || d > maxDelay {
		return maxDelay
	}
	return d
}

// WithRetry wraps g so failed calls are retried with exponential backoff. The
// result is a StructuredGenerator whenever g is one.
func WithRetry(g Generator, p RetryPolicy) Generator {
	r := &retryGenerator{gen: g, policy: p}
	if sg, ok := g.(StructuredGenerator); ok {
		return &retryStructuredGenerator{retryGenerator: r, structured: sg}
	}
	return r
}

type retryGenerator struct {
	gen    Generator
	policy RetryPolicy
}

func (r *retryGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return r.do(ctx, func(ctx context.Context) (string, error) {
		return r.gen.Generate(ctx, prompt)
	})
}

type retryStructuredGenerator struct {
	*retryGenerator
	structured StructuredGenerator
}

func (r *retryStructuredGenerator) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	return r.do(ctx, func(ctx context.Context) (string, error) {
		return r.structured.GenerateJSON(ctx, prompt, schema)
	})
}

// SupportsJSON forwards to the wrapped generator when it reports it.
func (r *retryStructuredGenerator) SupportsJSON() bool {
	if s, ok := r.structured.(interface{ SupportsJSON() bool }); ok {
		return s.SupportsJSON()
	}
	return true
}

func (r *retryGenerator) do(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	attempts := max(r.policy.MaxRetries, 0) + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := r.policy.delay(attempt - 1)
			log.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("wait", wait).Msg("Retrying generation")
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v (last error: %v)", models.ErrGeneration, ctx.Err(), lastErr)
			case <-time.After(wait):
			}
		}

		out, err := r.attempt(ctx, call)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}
	if errors.Is(lastErr, models.ErrGeneration) {
		return "", fmt.Errorf("after %d attempts: %w", attempts, lastErr)
	}
	return "", fmt.Errorf("%w: after %d attempts: %w", models.ErrGeneration, attempts, lastErr)
}

// langchaingo clients only report the status code in the message.
var statusCodeRe = regexp.MustCompile(`status code:? (\d{3})`)

// retryable reports whether another attempt could succeed. Auth failures and
// other client errors except 408 and 429 are final.
func retryable(err error) bool {
	code := statusCode(err)
	if code == 0 {
		return true
	}
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return code < 400 || code >= 500
}

func statusCode(err error) int {
	var ollamaErr api.StatusError
	if errors.As(err, &ollamaErr) {
		return ollamaErr.StatusCode
	}
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return geminiErr.Code
	}
	var geminiPtr *genai.APIError
	if errors.As(err, &geminiPtr) && geminiPtr != nil {
		return geminiPtr.Code
	}
	if m := statusCodeRe.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code
	}
	return 0
}

func (r *retryGenerator) attempt(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	if r.policy.Timeout <= 0 {
		return call(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
	defer cancel()
	return call(ctx)
}
