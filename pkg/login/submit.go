package login

import (
	"regexp"

	"deckwatch/pkg/dom"
)

var signInText = regexp.MustCompile(`(?i)iniciar sesión|sign in|entrar|log in|login|acceder|signin`)

// ChooseSubmit picks the control to click in a login form. Buttons are
// considered first and anchors only when the form has no buttons. Among the
// candidates the first one whose text reads like "sign in" wins, then the
// first submit control, then the first candidate.
func ChooseSubmit(controls []dom.Control) (dom.Control, bool) {
	var buttons, anchors []dom.Control
	for _, c := range controls {
		if c.Kind == dom.ControlAnchor {
			anchors = append(anchors, c)
		} else {
			buttons = append(buttons, c)
		}
	}
	candidates := buttons
	if len(candidates) == 0 {
		candidates = anchors
	}
	if len(candidates) == 0 {
		return dom.Control{}, false
	}

	for _, c := range candidates {
		if signInText.MatchString(c.Text) {
			return c, true
		}
	}
	for _, c := range candidates {
		if c.Kind == dom.ControlSubmit {
			return c, true
		}
	}
	return candidates[0], true
}
