// Package checkout validates buyer submissions before an order is created.
package checkout

import (
	"strings"

	"github.com/dvelkov/toystore/internal/cart"
)

type Request struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	Street        string `json:"street"`
	Note          string `json:"note"`
	CreateAccount bool   `json:"create_account"`
	AcceptTerms   bool   `json:"accept_terms"`
}

// Profile is the saved contact data used to auto-fill the next checkout.
// Stored best-effort beside the session cart.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Street    string `json:"street"`
}

func digits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// Validate checks every rule and returns all violations together, so the
// buyer can fix the whole form in one pass. An empty slice means the
// submission may proceed.
func Validate(req Request, items []cart.Item) []string {
	var errs []string
	if strings.TrimSpace(req.FirstName) == "" {
		errs = append(errs, "Внесете го вашето име.")
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs = append(errs, "Внесете го вашето презиме.")
	}
	if !strings.Contains(req.Email, "@") {
		errs = append(errs, "Внесете валидна е-маил адреса.")
	}
	if digits(req.Phone) < 8 {
		errs = append(errs, "Внесете валиден телефонски број.")
	}
	if !IsKnownCity(req.City) {
		errs = append(errs, "Одберете град/општина.")
	}
	if strings.TrimSpace(req.Street) == "" {
		errs = append(errs, "Внесете ја вашата улица.")
	}
	if !req.AcceptTerms {
		errs = append(errs, "Мора да ги прифатите условите.")
	}
	if len(items) == 0 {
		errs = append(errs, "Кошничката е празна.")
	}
	return errs
}
