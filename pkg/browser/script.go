package browser

import (
	"encoding/json"
	"fmt"
)

// refAttr marks elements handed out as dom refs so later calls can find them
// again in the main document or a same-origin frame.
const refAttr = "data-dw-ref"

// jsPrelude defines helpers shared by every probe script.
const jsPrelude = `
const __docs = () => {
  const out = [{doc: document, frame: -1}];
  document.querySelectorAll('iframe, frame').forEach((f, i) => {
    try { if (f.contentDocument) out.push({doc: f.contentDocument, frame: i}); } catch (e) {}
  });
  return out;
};
const __query = (doc, sel) => { try { return Array.from(doc.querySelectorAll(sel)); } catch (e) { return []; } };
const __visible = (el) => { const r = el.getBoundingClientRect(); return r.width > 0 && r.height > 0; };
const __ref = (el) => {
  let ref = el.getAttribute('` + refAttr + `');
  if (!ref) {
    window.__dwSeq = (window.__dwSeq || 0) + 1;
    ref = 'r' + window.__dwSeq;
    el.setAttribute('` + refAttr + `', ref);
  }
  return ref;
};
const __find = (ref) => {
  for (const d of __docs()) {
    const el = d.doc.querySelector('[` + refAttr + `="' + ref + '"]');
    if (el) return {el, frame: d.frame};
  }
  return null;
};
`

// script wraps body in an IIFE receiving args as JSON.
func script(body string, args ...any) string {
	encoded := make([]any, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			b = []byte("null")
		}
		encoded[i] = string(b)
	}
	return fmt.Sprintf("(function(){%s\n%s\n})()", jsPrelude, fmt.Sprintf(body, encoded...))
}

const jsAnyPresent = `
const selectors = %s;
for (const d of __docs()) {
  for (const sel of selectors) {
    if (__query(d.doc, sel).length > 0) return true;
  }
}
return false;`

const jsClickFirst = `
const selectors = %s;
for (const d of __docs()) {
  for (const sel of selectors) {
    for (const el of __query(d.doc, sel)) {
      if (!__visible(el)) continue;
      try { el.scrollIntoView({block: 'center'}); el.click(); return sel; } catch (e) {}
    }
  }
}
return '';`

const jsCollectFields = `
const selectors = %s;
const out = [];
const seen = new Set();
for (const d of __docs()) {
  for (const sel of selectors) {
    for (const el of __query(d.doc, sel)) {
      if (seen.has(el)) continue;
      seen.add(el);
      const form = el.closest('form');
      const div = el.closest('div');
      out.push({
        ref: __ref(el),
        selector: sel,
        tag: el.tagName.toLowerCase(),
        type: (el.getAttribute('type') || '').toLowerCase(),
        name: el.getAttribute('name') || '',
        id: el.id || '',
        placeholder: el.getAttribute('placeholder') || '',
        ariaLabel: el.getAttribute('aria-label') || '',
        visible: __visible(el),
        inFrame: d.frame >= 0,
        form: form ? {
          hasSubmit: !!form.querySelector('button[type="submit"], input[type="submit"]'),
          text: (form.innerText || form.textContent || '').slice(0, 4000),
          class: form.getAttribute('class') || '',
          action: form.getAttribute('action') || '',
        } : null,
        ancestorClass: div ? (div.getAttribute('class') || '') : '',
      });
    }
  }
}
return out;`

// submitControls is queried as one selector so controls come back in
// document order whatever their kind.
const submitControls = `button[type="submit"], input[type="submit"], button, input[type="button"]`

const jsCollectControls = `
const hit = __find(%s);
if (!hit) return {found: false, controls: []};
const form = hit.el.closest('form');
if (!form) return {found: true, controls: []};
const controls = [];
const seen = new Set();
const push = (el, kind) => {
  if (seen.has(el)) return;
  seen.add(el);
  controls.push({ref: __ref(el), kind, text: ((el.innerText || el.value || el.textContent || '') + '').trim(), visible: __visible(el)});
};
const isSubmit = (el) => el.matches('button[type="submit"], input[type="submit"]');
form.querySelectorAll('` + submitControls + `').forEach(el => push(el, isSubmit(el) ? 'submit' : 'button'));
form.querySelectorAll('a').forEach(el => push(el, 'anchor'));
return {found: true, controls};`

const jsClickRef = `
const hit = __find(%s);
if (!hit) return {found: false};
const el = hit.el;
try { el.scrollIntoView({block: 'center'}); } catch (e) {}
const r = el.getBoundingClientRect();
try { el.click(); return {found: true, clicked: true}; } catch (e) {}
return {found: true, clicked: false, inFrame: hit.frame >= 0, x: r.left + r.width / 2, y: r.top + r.height / 2};`

const jsSubmitForm = `
const hit = __find(%s);
if (!hit) return false;
const form = hit.el.closest('form');
if (!form) return false;
if (typeof form.requestSubmit === 'function') { form.requestSubmit(); } else { form.submit(); }
return true;`

const jsFocusClear = `
const hit = __find(%s);
if (!hit) return false;
const el = hit.el;
el.scrollIntoView({block: 'center'});
el.focus();
if ('value' in el) {
  el.value = '';
  el.dispatchEvent(new Event('input', {bubbles: true}));
}
return true;`

const jsFindLoginForm = `
for (const d of __docs()) {
  for (const form of __query(d.doc, 'form')) {
    const txt = (form.innerText || form.textContent || '').trim();
    if (!/iniciar sesión|sign in/i.test(txt) && !form.querySelector('button[type="submit"]')) continue;
    const user = form.querySelector('input[type="text"], input:not([type])');
    const pass = form.querySelector('input[type="password"]');
    if (!user && !pass) continue;
    return {found: true, form: {userRef: user ? __ref(user) : '', passRef: pass ? __ref(pass) : '', inFrame: d.frame >= 0}};
  }
}
return {found: false};`

const jsFocus = `
const hit = __find(%s);
if (!hit) return false;
hit.el.focus();
return true;`

const jsLocation = `return location.href;`
