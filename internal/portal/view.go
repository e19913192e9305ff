package portal

import (
	"fmt"
	"strings"
)

// ClientView is the trimmed, display-ready projection of a lookup payload.
// The upstream record carries far more than the portal shows; only the fields
// below reach the browser.
type ClientView struct {
	FullName          string             `json:"full_name"`
	IDNumber          string             `json:"id_number"`
	MemberNumber      string             `json:"member_number"`
	Status            string             `json:"status"`
	Email             string             `json:"email"`
	ContactCell       string             `json:"contact_cell"`
	DebitSuccessRatio string             `json:"debit_success_ratio"`
	Subscriptions     []SubscriptionView `json:"subscriptions"`
}

// SubscriptionView is one subscription with its products.
type SubscriptionView struct {
	Status    string        `json:"sub_status"`
	StartDate string        `json:"sub_start_date"`
	EndDate   string        `json:"sub_end_date"`
	Products  []ProductView `json:"products"`
}

// ProductView is one subscribed product with a display-ready amount.
type ProductView struct {
	Name            string `json:"product_name"`
	AmountFormatted string `json:"product_amount_formatted"`
}

// BuildClientView projects the loosely-typed upstream payload into the
// portal's display shape. Missing fields become empty strings rather than
// errors; the upstream omits fields freely.
func BuildClientView(data map[string]any) ClientView {
	record := asMap(data["record"])

	view := ClientView{
		FullName:          fullName(record),
		IDNumber:          str(record["id_number"]),
		MemberNumber:      str(record["member_number"]),
		Status:            recordStatus(record),
		Email:             str(record["email"]),
		ContactCell:       contactCell(record),
		DebitSuccessRatio: debitSuccessRatio(record),
		Subscriptions:     []SubscriptionView{},
	}

	for _, raw := range asSlice(data["subscriptions"]) {
		sub := asMap(raw)
		subView := SubscriptionView{
			Status:    strOr(sub["status"], "Unknown"),
			StartDate: firstStr(sub, "date_start", "start_date"),
			EndDate:   strOr(sub["end_date"], "Ongoing"),
			Products:  []ProductView{},
		}
		for _, rawProduct := range asSlice(sub["products"]) {
			product := asMap(rawProduct)
			subView.Products = append(subView.Products, ProductView{
				Name:            strOr(product["name"], "Unknown Product"),
				AmountFormatted: FormatAmount(num(product["amount"])),
			})
		}
		view.Subscriptions = append(view.Subscriptions, subView)
	}
	return view
}

// FormatAmount renders an integer minor-unit amount as major currency units
// with a rand prefix: 19900 becomes "R199.00".
func FormatAmount(minorUnits float64) string {
	return fmt.Sprintf("R%.2f", minorUnits/100)
}

// fullName joins the record's name fields, accepting both naming conventions
// the upstream has used (name/surname and firstname/lastname).
func fullName(record map[string]any) string {
	first := firstStr(record, "name", "firstname")
	last := firstStr(record, "surname", "lastname")
	return strings.TrimSpace(first + " " + last)
}

// recordStatus prefers an explicit status string, falling back to the
// is_active boolean.
func recordStatus(record map[string]any) string {
	if s := str(record["status"]); s != "" {
		return s
	}
	if active, ok := record["is_active"].(bool); ok {
		if active {
			return "Active"
		}
		return "Inactive"
	}
	return ""
}

// contactCell reads the cell number from either the flat field or the nested
// contact object.
func contactCell(record map[string]any) string {
	if s := str(record["cell"]); s != "" {
		return s
	}
	if s := str(record["contact_cell"]); s != "" {
		return s
	}
	contact := asMap(record["contact"])
	return str(contact["cell"])
}

// debitSuccessRatio summarizes the record's transaction counters as a
// percentage, "No transactions" when both counters are zero or absent.
func debitSuccessRatio(record map[string]any) string {
	successful := num(record["total_successful_transactions"])
	failed := num(record["total_failed_transactions"])
	total := successful + failed
	if total == 0 {
		return "No transactions"
	}
	return fmt.Sprintf("%.1f%% (%d/%d)", successful/total*100, int(successful), int(total))
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strOr(v any, fallback string) string {
	if s := str(v); s != "" {
		return s
	}
	return fallback
}

func firstStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// num coerces the numeric types JSON decoding can produce.
func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
