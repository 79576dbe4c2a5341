package stock

import (
	"encoding/json"
	"errors"
)

// ErrNotLoggedIn is returned by a strict extraction when neither an account
// indicator nor a session cookie is present after the page loads.
var ErrNotLoggedIn = errors.New("not logged in")

// Availability is the classified stock state of an offer.
type Availability int

const (
	Unknown Availability = iota
	OutOfStock
	InStock
)

// String returns the label used in operator messages.
func (a Availability) String() string {
	switch a {
	case InStock:
		return "en stock"
	case OutOfStock:
		return "sin stock"
	default:
		return "posible stock"
	}
}

func (a Availability) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// Entry is one offer extracted from the listing page. Entries are rebuilt on
// every pass and never stored.
type Entry struct {
	Title        string       `json:"title"`
	Price        *string      `json:"price"`
	URL          *string      `json:"url"`
	Availability Availability `json:"availability"`
	// Synthetic marks fallback entries built from out-of-stock phrasing when
	// no offer container produced a title.
	Synthetic bool `json:"synthetic,omitempty"`
}

// PriceText returns the price or a dash.
func (e Entry) PriceText() string {
	if e.Price == nil {
		return "-"
	}
	return *e.Price
}

// Result is the outcome of one extraction pass.
type Result struct {
	Entries   []Entry `json:"entries"`
	LoggedIn  bool    `json:"logged_in"`
	Account   string  `json:"account,omitempty"`
	PageTitle string  `json:"page_title"`
	URL       string  `json:"url"`
}

// Qualifying returns the entries worth alerting on: everything not
// classified out of stock.
func Qualifying(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Availability != OutOfStock {
			out = append(out, e)
		}
	}
	return out
}

// Exit codes of a one-shot check.
const (
	ExitAvailable   = 0
	ExitNoneInStock = 1
	ExitNoItems     = 2
	ExitError       = 3
	ExitNotLoggedIn = 4
)

// ExitCode maps a one-shot check outcome to a process exit code. With
// alwaysZero any run without an error exits 0.
func ExitCode(entries []Entry, err error, alwaysZero bool) int {
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		return ExitNotLoggedIn
	case err != nil:
		return ExitError
	case alwaysZero:
		return ExitAvailable
	case len(entries) == 0:
		return ExitNoItems
	case len(Qualifying(entries)) > 0:
		return ExitAvailable
	default:
		return ExitNoneInStock
	}
}
