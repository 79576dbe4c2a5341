package stock

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rules are the page heuristics: which elements are offers and which words
// mean sold out or buyable. DefaultRules is tuned to the Steam Deck
// refurbished listing.
type Rules struct {
	Containers   string
	CartButtons  string
	PriceNodes   string
	OfferLinks   string
	Headings     string
	ReadySignals []string

	TitlePattern     *regexp.Regexp
	PricePattern     *regexp.Regexp
	OutOfStock       *regexp.Regexp
	Purchase         *regexp.Regexp
	ButtonOutOfStock *regexp.Regexp
	FallbackPhrase   *regexp.Regexp

	// MaxTitleLen skips descendants whose text is too long to be a title.
	MaxTitleLen int
	// FallbackLimit bounds the synthetic sample.
	FallbackLimit int
	// FallbackTitle is used when the page has no title.
	FallbackTitle string

	AccountSelectors string
	ProfileLinks     string
}

func DefaultRules() Rules {
	return Rules{
		Containers:  ".SaleSectionContainer, .tab_item, .sale_row, .store_sale_row, .discount_row, .search_result_row",
		CartButtons: ".CartBtn, .cart_btn, .add_to_cart, .add_to_cart_button",
		PriceNodes:  ".discount_final_price, .price, .game_purchase_price, .search_price, .StoreSalePriceWidgetContainer, .StoreSalePriceWidgetContainer *",
		OfferLinks:  `a[href*="/app/"], a[href*="/sub/"]`,
		Headings:    "h2, h3",
		ReadySignals: []string{
			".tab_item", ".search_result_row", ".sale_row", ".discount_row",
		},

		TitlePattern:     regexp.MustCompile(`(?i)steam\s*deck`),
		PricePattern:     regexp.MustCompile(`\d+[.,]\d{2}\s*€`),
		OutOfStock:       regexp.MustCompile(`(?i)(agotad|sin existenci|sin existencias|sold out|out of stock|no disponible|unavailable)`),
		Purchase:         regexp.MustCompile(`(?i)(add to cart|add to basket|añadir al carrito|añadir a la cesta|comprar|buy now|buy|available|in stock|available for purchase)`),
		ButtonOutOfStock: regexp.MustCompile(`(?i)sin existenci`),
		FallbackPhrase:   regexp.MustCompile(`(?i)(sin existenci|sin existencias)`),

		MaxTitleLen:   200,
		FallbackLimit: 5,
		FallbackTitle: "Página",

		AccountSelectors: "#account_pulldown .name, #account_pulldown, .user_persona_name, .persona_name, .account_name, .user_name, .global_actions .header_account_area .name",
		ProfileLinks:     `a[href*="steamcommunity.com/id/"], a[href*="steamcommunity.com/profiles/"]`,
	}
}

var spaces = regexp.MustCompile(`\s+`)

func clean(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Parse extracts offers from a page. Containers are deduplicated by title,
// first occurrence in document order wins. When no container yields a title,
// up to FallbackLimit synthetic out-of-stock entries are built from elements
// carrying sold-out phrasing.
func Parse(html, pageTitle, pageURL string, rules Rules) []Entry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(pageURL)

	entries := make([]Entry, 0)
	seen := make(map[string]bool)

	doc.Find(rules.Containers).Each(func(_ int, sel *goquery.Selection) {
		text := clean(sel.Text())
		if text == "" {
			return
		}
		title := extractTitle(sel, rules)
		if title == "" || seen[title] {
			return
		}
		seen[title] = true

		entries = append(entries, Entry{
			Title:        title,
			Price:        extractPrice(sel, text, rules),
			URL:          extractURL(sel, base, rules),
			Availability: Classify(sel, text, rules),
		})
	})

	if len(entries) > 0 {
		return entries
	}
	return fallback(doc, pageTitle, pageURL, rules)
}

func extractTitle(sel *goquery.Selection, rules Rules) string {
	var title string
	sel.Find("*").EachWithBreak(func(_ int, n *goquery.Selection) bool {
		t := clean(n.Text())
		if t != "" && len(t) < rules.MaxTitleLen && rules.TitlePattern.MatchString(t) {
			title = t
			return false
		}
		return true
	})
	if title != "" {
		return title
	}
	if h := clean(sel.Find(rules.Headings).First().Text()); h != "" {
		return h
	}
	return clean(sel.Find("a").First().Text())
}

func extractPrice(sel *goquery.Selection, text string, rules Rules) *string {
	if m := rules.PricePattern.FindString(text); m != "" {
		return &m
	}
	var price *string
	sel.Find(rules.PriceNodes).EachWithBreak(func(_ int, n *goquery.Selection) bool {
		if t := clean(n.Text()); t != "" {
			price = &t
			return false
		}
		return true
	})
	return price
}

func extractURL(sel *goquery.Selection, base *url.URL, rules Rules) *string {
	href, ok := sel.Find(rules.OfferLinks).First().Attr("href")
	if !ok || href == "" {
		return nil
	}
	if base != nil {
		if ref, err := url.Parse(href); err == nil {
			href = base.ResolveReference(ref).String()
		}
	}
	return &href
}

// Classify applies the availability rules in order, each later rule
// overriding the earlier ones:
//  1. Unknown by default
//  2. OutOfStock when the container text has sold-out vocabulary
//  3. a cart button's own text: sold-out wording gives OutOfStock, purchase
//     wording gives InStock
//  4. InStock when purchase vocabulary appears anywhere in the container
//
// Rule 4 can override an explicit sold-out cart button.
func Classify(sel *goquery.Selection, text string, rules Rules) Availability {
	a := Unknown
	if rules.OutOfStock.MatchString(text) {
		a = OutOfStock
	}
	if btn := sel.Find(rules.CartButtons).First(); btn.Length() > 0 {
		bt := clean(btn.Text())
		switch {
		case rules.ButtonOutOfStock.MatchString(bt) || rules.OutOfStock.MatchString(bt):
			a = OutOfStock
		case rules.Purchase.MatchString(bt):
			a = InStock
		}
	}
	if rules.Purchase.MatchString(text) {
		a = InStock
	}
	return a
}

func fallback(doc *goquery.Document, pageTitle, pageURL string, rules Rules) []Entry {
	title := clean(pageTitle)
	if title == "" {
		title = rules.FallbackTitle
	}

	var out []Entry
	doc.Find("div").EachWithBreak(func(_ int, n *goquery.Selection) bool {
		if len(out) >= rules.FallbackLimit {
			return false
		}
		if rules.FallbackPhrase.MatchString(n.Text()) {
			u := pageURL
			out = append(out, Entry{
				Title:        title,
				URL:          &u,
				Availability: OutOfStock,
				Synthetic:    true,
			})
		}
		return true
	})
	if out == nil {
		return []Entry{}
	}
	return out
}

// DetectAccount looks for a logged-in account indicator and returns its text.
func DetectAccount(html string, rules Rules) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	if n := doc.Find(rules.AccountSelectors).First(); n.Length() > 0 {
		return clean(n.Text()), true
	}
	if n := doc.Find(rules.ProfileLinks).First(); n.Length() > 0 {
		name := clean(n.Text())
		if name == "" {
			name, _ = n.Attr("href")
		}
		return name, true
	}
	return "", false
}
