// Package template renders hook command templates. The syntax is flat
// {{name}} substitution only; there are deliberately no conditionals,
// loops, or helpers, which keeps the injection surface bounded to the
// parameter values the operator's template chooses to place.
package template

import (
	"fmt"
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// MissingParamError reports a placeholder with no corresponding parameter.
// Rendering fails closed instead of substituting an empty string, which
// would silently truncate the command.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("template references parameter %q which was not supplied", e.Param)
}

// Render substitutes parameters into a command template. Values are
// inserted verbatim as raw text, with no shell escaping: the operator owns
// the template and with it the decision of what callers may inject.
// Parameters not referenced by the template are ignored. A single pass is
// made over the template, so placeholders inside parameter values are not
// expanded.
func Render(tmpl string, params map[string]string) (string, error) {
	var missing *MissingParamError
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := params[name]
		if !ok {
			if missing == nil {
				missing = &MissingParamError{Param: name}
			}
			return match
		}
		return value
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

// Params returns the placeholder names a template references, in order of
// first appearance.
func Params(tmpl string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}
