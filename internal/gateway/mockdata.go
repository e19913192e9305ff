package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// mockRecordID is the only identity number the mock upstream recognizes.
const mockRecordID = "7608210157080"

// MockDoer is a canned in-process upstream for demos and local development.
// It answers the probe with 200 and the detail lookup with a fixed record for
// one known identity number, a null record otherwise. Wire it in with
// WithDoer to run the portal without a SwitchTransact credential.
type MockDoer struct{}

// Do implements Doer.
func (MockDoer) Do(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodGet {
		return mockResponse(req, http.StatusOK, map[string]any{"data": []any{}}), nil
	}

	var lookup LookupRequest
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err == nil {
			_ = json.Unmarshal(body, &lookup)
		}
	}

	if strings.TrimSpace(lookup.IDNumber) != mockRecordID {
		return mockResponse(req, http.StatusOK, map[string]any{"record": nil}), nil
	}
	return mockResponse(req, http.StatusOK, mockClientPayload()), nil
}

func mockClientPayload() map[string]any {
	return map[string]any{
		"record": map[string]any{
			"id":        12345,
			"id_number": mockRecordID,
			"name":      "John",
			"surname":   "Doe",
			"status":    "Active",
			"email":     "john.doe@example.com",
			"contact":   map[string]any{"cell": "0821234567"},
		},
		"subscriptions": []any{
			map[string]any{
				"date_start": "2023-02-01",
				"status":     "active",
				"products": []any{
					map[string]any{"name": "Basic Plan", "amount": 19900},
				},
			},
		},
	}
}

func mockResponse(req *http.Request, status int, payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}
}
