package gateway

import (
	"encoding/json"
	"fmt"
)

// The upstream API answers in several loosely-typed shapes. Normalize
// reconciles them into the LookupResult union with an ordered list of shape
// matchers, evaluated top to bottom, first match wins:
//
//  1. non-2xx status: error with the body's message field when parseable,
//     else a generic "API error: <status>"
//  2. 2xx {status:"error", message}: logical error with the upstream message
//  3. 2xx {data: {...}}: success with the unwrapped inner object
//  4. 2xx bare record mapping: success with the body verbatim
//
// A 2xx body that is not valid JSON yields a parse error; an HTTP error is
// never retried, so callers can surface the result directly.
func Normalize(statusCode int, body []byte) LookupResult {
	if statusCode < 200 || statusCode >= 300 {
		return errorStatus(statusCode, body)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Failure(ErrorParse, "Invalid response received from API")
	}

	for _, match := range bodyShapes {
		if result, ok := match(payload); ok {
			return result
		}
	}
	// bareRecord always matches; unreachable.
	return Success(payload)
}

type shapeMatcher func(map[string]any) (LookupResult, bool)

var bodyShapes = []shapeMatcher{
	errorEnvelope,
	wrappedData,
	bareRecord,
}

// errorStatus handles shape 1: a non-2xx HTTP response.
func errorStatus(statusCode int, body []byte) LookupResult {
	message := fmt.Sprintf("API error: %d", statusCode)
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	}
	result := Failure(ErrorHTTP, message)
	result.StatusCode = statusCode
	return result
}

// errorEnvelope handles shape 2: {status:"error", message}.
func errorEnvelope(payload map[string]any) (LookupResult, bool) {
	status, ok := payload["status"].(string)
	if !ok || status != "error" {
		return LookupResult{}, false
	}
	message, _ := payload["message"].(string)
	if message == "" {
		message = "API returned an error"
	}
	return Failure(ErrorUpstream, message), true
}

// wrappedData handles shape 3: {data: {...}}.
func wrappedData(payload map[string]any) (LookupResult, bool) {
	inner, ok := payload["data"].(map[string]any)
	if !ok {
		return LookupResult{}, false
	}
	return Success(inner), true
}

// bareRecord handles shape 4: the record mapping itself, no envelope. A
// missing or null record inside the payload is still a success; whether to
// show "no results" is the caller's concern.
func bareRecord(payload map[string]any) (LookupResult, bool) {
	return Success(payload), true
}

// HasRecord reports whether a success payload carries a non-empty primary
// record, the upstream's way of saying the person exists.
func HasRecord(data map[string]any) bool {
	record, ok := data["record"].(map[string]any)
	return ok && len(record) > 0
}
