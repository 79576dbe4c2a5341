package login

import (
	"regexp"
	"slices"
	"strings"

	"deckwatch/pkg/dom"
)

// SearchPenalty is returned for anything that looks like a site search box.
const SearchPenalty = -1000

var (
	identityToken = regexp.MustCompile(`user|usuario|email|mail|account|login|nombre`)
	formSignIn    = regexp.MustCompile(`sign in|signin|iniciar sesión|entrar|acceder`)
	loginClass    = regexp.MustCompile(`login|signin|auth|account`)
)

// Score rates how likely a field is a login credential input. Higher is
// better; only positive scores are usable.
func Score(f dom.Field) int {
	aria := strings.ToLower(f.AriaLabel)
	name := strings.ToLower(f.Name)
	id := strings.ToLower(f.ID)
	placeholder := strings.ToLower(f.Placeholder)

	if strings.Contains(aria, "search") || strings.Contains(name, "search") || strings.Contains(id, "search") ||
		strings.Contains(placeholder, "search") || strings.Contains(placeholder, "busca") {
		return SearchPenalty
	}

	score := 0
	if identityToken.MatchString(name) {
		score += 30
	}
	if identityToken.MatchString(id) {
		score += 20
	}
	if identityToken.MatchString(placeholder) {
		score += 15
	}
	if strings.EqualFold(f.Type, "password") {
		score += 40
	}
	if form := f.Form; form != nil {
		if form.HasSubmit {
			score += 40
		}
		if formSignIn.MatchString(strings.ToLower(form.Text)) {
			score += 30
		}
		if loginClass.MatchString(strings.ToLower(form.Class)) {
			score += 20
		}
	}
	if loginClass.MatchString(strings.ToLower(f.AncestorClass)) {
		score += 10
	}
	return score
}

// SelectBest returns the highest scoring field. Ties keep collection order.
// ok is false when there are no fields or the best score is not positive.
func SelectBest(fields []dom.Field) (best dom.Field, score int, ok bool) {
	if len(fields) == 0 {
		return dom.Field{}, 0, false
	}
	type scored struct {
		field dom.Field
		score int
	}
	ranked := make([]scored, len(fields))
	for i, f := range fields {
		ranked[i] = scored{f, Score(f)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int { return b.score - a.score })

	top := ranked[0]
	if top.score <= 0 {
		return top.field, top.score, false
	}
	return top.field, top.score, true
}
