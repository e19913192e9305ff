// Package portal serves the browser-facing JSON API: client lookups through
// the gateway, the cached upstream status, and product selection.
package portal

import (
	"strings"

	dErrors "sigportal/pkg/domain-errors"
)

// minIDNumberLength is the shortest identity number accepted for lookup.
const minIDNumberLength = 10

// CheckClientRequest is the lookup input from the browser.
type CheckClientRequest struct {
	IDNumber string `json:"id_number"`
}

// Normalize trims surrounding whitespace from the id number.
func (r *CheckClientRequest) Normalize() {
	r.IDNumber = strings.TrimSpace(r.IDNumber)
}

// Validate rejects ids before any network call: the value must be present,
// digit-only, and at least ten characters.
func (r *CheckClientRequest) Validate() error {
	if r.IDNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "ID number is required")
	}
	for _, c := range r.IDNumber {
		if c < '0' || c > '9' {
			return dErrors.New(dErrors.CodeValidation, "Invalid ID number format")
		}
	}
	if len(r.IDNumber) < minIDNumberLength {
		return dErrors.New(dErrors.CodeValidation, "ID number must be at least 10 digits")
	}
	return nil
}

// SelectProductRequest switches the active product configuration.
type SelectProductRequest struct {
	ID string `json:"id"`
}

// Normalize trims surrounding whitespace from the product id.
func (r *SelectProductRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
}

// Validate requires a product id. Unknown ids are not an error; the registry
// falls back to the default configuration.
func (r *SelectProductRequest) Validate() error {
	if r.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "product id is required")
	}
	return nil
}
