// Package dom holds structural snapshots of page elements. They are produced
// by the browser package from a live page and consumed by pure heuristics.
package dom

// Field is an input element as seen during login field discovery. Ref is an
// opaque handle the browser can resolve back to the element.
type Field struct {
	Ref         string `json:"ref"`
	Selector    string `json:"selector"`
	Tag         string `json:"tag"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	ID          string `json:"id"`
	Placeholder string `json:"placeholder"`
	AriaLabel   string `json:"ariaLabel"`
	Visible     bool   `json:"visible"`
	InFrame     bool   `json:"inFrame"`

	// Form describes the enclosing form, nil when the element has none.
	Form *Form `json:"form,omitempty"`
	// AncestorClass is the class attribute of the closest div ancestor.
	AncestorClass string `json:"ancestorClass"`
}

// Form is the metadata of a field's enclosing form.
type Form struct {
	HasSubmit bool   `json:"hasSubmit"`
	Text      string `json:"text"`
	Class     string `json:"class"`
	Action    string `json:"action"`
}

// ControlKind classifies a clickable control found near a login field.
type ControlKind string

const (
	ControlSubmit ControlKind = "submit" // button[type=submit], input[type=submit]
	ControlButton ControlKind = "button" // other buttons
	ControlAnchor ControlKind = "anchor"
)

// Control is a clickable element inside a login form.
type Control struct {
	Ref     string      `json:"ref"`
	Kind    ControlKind `json:"kind"`
	Text    string      `json:"text"`
	Visible bool        `json:"visible"`
}

// LoginForm is a form that looks like a sign-in form: its text mentions
// signing in or it has a submit button. UserRef and PassRef are its first
// text and password inputs; either may be empty.
type LoginForm struct {
	UserRef string `json:"userRef"`
	PassRef string `json:"passRef"`
	InFrame bool   `json:"inFrame"`
}
