package bridge

import "fmt"

// Operation references a function to run inside the page.
//
// Source is a JavaScript function expression of the form
// (wpp, args) => ... . The in-page API object is passed as wpp and the
// caller's named arguments as args; the function must not reach for any
// other state. It may return a value or a promise of one, and the settled
// value must be JSON-serializable.
type Operation struct {
	// Name identifies the operation in errors and logs, e.g. "conn.isRegistered".
	Name string

	// Source is the in-page function expression.
	Source string

	// Standalone operations run even when the in-page API is not loaded.
	// wpp is then undefined inside Source.
	Standalone bool
}

// Op is shorthand for an Operation that needs the in-page API.
func Op(name, source string) Operation {
	return Operation{Name: name, Source: source}
}

// payload is the single argument handed to the in-page wrapper.
type payload struct {
	Op         string         `json:"op"`
	Standalone bool           `json:"standalone"`
	Args       map[string]any `json:"args"`
}

func (p payload) toMap() map[string]any {
	return map[string]any{
		"op":         p.Op,
		"standalone": p.Standalone,
		"args":       p.Args,
	}
}

// invokeScript wraps src so that the page always answers with a JSON string
// envelope. Errors and serialization failures are captured in-page so their
// message and stack survive the trip back.
func invokeScript(src string) string {
	return fmt.Sprintf(`async (payload) => {
  const describe = (e) => ({
    name: (e && e.name) || '',
    message: String((e && e.message) || e),
    stack: (e && e.stack) || ''
  });
  const wpp = window.WPP;
  if (!payload.standalone && !wpp) {
    return JSON.stringify({ ok: false, stage: 'api', error: { name: '', message: 'window.WPP is not defined', stack: '' } });
  }
  let value;
  try {
    const fn = (%s);
    value = await fn(wpp, payload.args);
  } catch (e) {
    return JSON.stringify({ ok: false, stage: 'call', error: describe(e) });
  }
  try {
    return JSON.stringify({ ok: true, value: value === undefined ? null : value });
  } catch (e) {
    return JSON.stringify({ ok: false, stage: 'serialize', error: describe(e) });
  }
}`, src)
}

// predicateScript wraps src for WaitForPredicate. A falsy result keeps the
// page polling; a truthy one is returned inside the same envelope as Invoke.
// Source must be synchronous here.
func predicateScript(src string) string {
	return fmt.Sprintf(`(payload) => {
  const wpp = window.WPP;
  if (!payload.standalone && !wpp) {
    return false;
  }
  const fn = (%s);
  const value = fn(wpp, payload.args);
  if (!value) {
    return false;
  }
  return JSON.stringify({ ok: true, value: value });
}`, src)
}
