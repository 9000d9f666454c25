package handler

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/DukeRupert/uphill/internal/theme"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// String functions
		"hasPrefix": func(s, prefix string) bool {
			return strings.HasPrefix(s, prefix)
		},

		// selected compares by string form so named string types such as
		// domain.Pass match plain literals.
		"selected": func(current, value interface{}) template.HTMLAttr {
			if fmt.Sprint(current) == fmt.Sprint(value) {
				return " selected"
			}
			return ""
		},

		// Collection functions
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},

		// Theme
		"themeColor": func(t theme.Theme) string {
			return theme.ThemeColor(t)
		},
	}
}
