package fault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// FromAPI translates client errors from OpenAI-compatible endpoints into
// coded errors so the fallback classifier can act on them.
func FromAPI(operation string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := CodeForStatus(apiErr.HTTPStatusCode); ok {
			return Wrap(code, operation+": "+apiErr.Message, err)
		}
		if strings.Contains(strings.ToLower(apiErr.Message), "context length") {
			return Wrap(CodeContextLength, operation+": "+apiErr.Message, err)
		}
		return Wrap(CodeInternal, operation+": "+apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if code, ok := CodeForStatus(reqErr.HTTPStatusCode); ok {
			return Wrap(code, operation+": request failed", err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(CodeTimeout, operation+": request timed out", err)
		}
		return Wrap(CodeConnection, operation+": network error", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(CodeTimeout, operation+": deadline exceeded", err)
	}

	// Leave unrecognized failures uncoded so the classifier falls back on
	// message content alone.
	return fmt.Errorf("%s: %w", operation, err)
}
