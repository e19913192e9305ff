package gateway

import "time"

// LookupRequest is the upstream person-detail query. Field names follow the
// SwitchTransact wire contract.
type LookupRequest struct {
	IDNumber      string `json:"id_number"`
	Record        bool   `json:"record"`
	Subscriptions bool   `json:"subscriptions"`
	BankAccounts  bool   `json:"bank_accounts"`
	Transactions  bool   `json:"transactions"`
}

// NewLookupRequest returns a request with the portal's default include flags:
// record and subscriptions on, bank accounts and transactions off.
func NewLookupRequest(idNumber string) LookupRequest {
	return LookupRequest{
		IDNumber:      idNumber,
		Record:        true,
		Subscriptions: true,
	}
}

// ResultKind tags the variant of a LookupResult.
type ResultKind string

const (
	ResultSuccess  ResultKind = "success"
	ResultNotFound ResultKind = "not_found"
	ResultError    ResultKind = "error"
)

// LookupResult is the normalized outcome of a lookup. Exactly one variant is
// populated: Data on success, Message (plus optional StatusCode and Category)
// on error. Missing-record detection inside a success payload is left to the
// caller; the upstream signals "no record" with a success envelope.
type LookupResult struct {
	Kind       ResultKind
	Data       map[string]any
	Message    string
	StatusCode int
	Category   ErrorCategory
}

// IsSuccess reports whether the result carries data.
func (r LookupResult) IsSuccess() bool { return r.Kind == ResultSuccess }

// Success builds a success result around the given payload.
func Success(data map[string]any) LookupResult {
	return LookupResult{Kind: ResultSuccess, Data: data}
}

// Failure builds an error result with a classification category.
func Failure(category ErrorCategory, message string) LookupResult {
	return LookupResult{Kind: ResultError, Category: category, Message: message}
}

// StatusValue enumerates the upstream availability states shown in the UI.
type StatusValue string

const (
	StatusOK      StatusValue = "OK"
	StatusError   StatusValue = "ERROR"
	StatusUnknown StatusValue = "UNKNOWN"
)

// Status is a point-in-time view of upstream availability.
type Status struct {
	Status    StatusValue `json:"status"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
}

func statusNow(v StatusValue, message string) Status {
	return Status{Status: v, Message: message, Timestamp: time.Now().Unix()}
}
