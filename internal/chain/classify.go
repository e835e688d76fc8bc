// Package chain implements retry/fallback execution across ordered provider lists.
package chain

import (
	"strings"

	"github.com/rodolfonobrega/audioscribe/internal/fault"
)

// Class is the retry/fallback verdict for one provider failure.
type Class int

const (
	// ClassRetry marks transient failures worth retrying against the same provider.
	ClassRetry Class = iota
	// ClassFallback marks permanent failures that advance the chain immediately.
	ClassFallback
	// ClassUnknown marks unrecognized failures; the executor treats these like
	// ClassFallback so an unclassifiable provider cannot stall the chain.
	ClassUnknown
)

func (c Class) String() string {
	switch c {
	case ClassRetry:
		return "retry"
	case ClassFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

var fallbackCodes = map[fault.Code]bool{
	fault.CodeAuth:          true,
	fault.CodeBadRequest:    true,
	fault.CodeQuota:         true,
	fault.CodeContentPolicy: true,
	fault.CodeContextLength: true,
	fault.CodeNotFound:      true,
	fault.CodePermission:    true,
}

var retryCodes = map[fault.Code]bool{
	fault.CodeConnection:  true,
	fault.CodeUnavailable: true,
	fault.CodeRateLimited: true,
	fault.CodeInternal:    true,
	fault.CodeTimeout:     true,
}

// Message markers cover errors from SDKs and the runtime that never pass
// through fault codes. Matched case-insensitively against the full error text.
var fallbackMarkers = []string{
	"authentication",
	"invalid api key",
	"unauthorized",
	"forbidden",
	"not found",
	"does not exist",
	"invalid request",
	"budget exceeded",
	"quota exceeded",
	"content policy",
	"permission denied",
}

var retryMarkers = []string{
	"rate limit",
	"timeout",
	"connection",
	"service unavailable",
	"try again",
	"temporarily unavailable",
	"server error",
	"gateway timeout",
	"network",
}

// Classify maps a provider failure to a retry/fallback verdict.
// The fallback check runs strictly before the retry check, so an error
// matching both lists is permanent. When the error chain carries fault
// codes, the innermost one wins over any outer wrapper.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}

	code, hasCode := codeOf(err)
	message := strings.ToLower(err.Error())

	if hasCode && fallbackCodes[code] {
		return ClassFallback
	}
	if containsAny(message, fallbackMarkers) {
		return ClassFallback
	}

	if hasCode && retryCodes[code] {
		return ClassRetry
	}
	if containsAny(message, retryMarkers) {
		return ClassRetry
	}

	return ClassUnknown
}

// codeOf extracts the governing fault code from an error chain.
func codeOf(err error) (fault.Code, bool) {
	fe, ok := fault.Deepest(err)
	if !ok {
		return "", false
	}
	return fe.Code, true
}

func containsAny(message string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
