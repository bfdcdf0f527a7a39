// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompts

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

const ifClose = "{{/if}}"

var (
	ifOpenRe      = regexp.MustCompile(`\{\{#if\s+(\w+)\s*\}\}`)
	placeholderRe = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)
)

// Render expands conditional blocks, which may nest, then replaces {{name}}
// placeholders with the string form of vars[name]. Missing variables render as "".
// Tags with spaces such as {{ recipient.first_name }} are left untouched.
// Substituted values are not scanned again.
func Render(tmpl string, vars map[string]any) string {
	out := expandIfs(tmpl, vars)

	out = placeholderRe.ReplaceAllStringFunc(out, func(tag string) string {
		name := tag[2 : len(tag)-2]
		v, ok := vars[name]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})

	return strings.TrimSpace(out)
}

// expandIfs resolves {{#if}} blocks innermost first, so nested blocks pair
// with their own {{/if}}. An opening tag without a closing tag is left as
// is.
func expandIfs(tmpl string, vars map[string]any) string {
	for {
		opens := ifOpenRe.FindAllStringSubmatchIndex(tmpl, -1)
		if len(opens) == 0 {
			return tmpl
		}
		m := opens[len(opens)-1]
		end := strings.Index(tmpl[m[1]:], ifClose)
		if end < 0 {
			return tmpl
		}
		body := tmpl[m[1] : m[1]+end]
		if !truthy(vars[tmpl[m[2]:m[3]]]) {
			body = ""
		}
		tmpl = tmpl[:m[0]] + body + tmpl[m[1]+end+len(ifClose):]
	}
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}
