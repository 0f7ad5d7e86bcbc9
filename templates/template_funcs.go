package templates

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"rally-metrics-go/models"
	"rally-metrics-go/services"
	"strings"
)

// GetTemplateFuncs returns the template function map for HTML templates
func GetTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"lower": strings.ToLower,

		// pathEscape encodes a player name for use in a URL path segment
		"pathEscape": url.PathEscape,

		"percent": func(p models.Percent) string { return p.String() },

		// initials turns "Chicago Slice" into "CS" for logo placeholders
		"initials": func(name string) string {
			var b strings.Builder
			for _, word := range strings.Fields(name) {
				b.WriteString(strings.ToUpper(word[:1]))
				if b.Len() == 3 {
					break
				}
			}
			return b.String()
		},

		"renderSummary": services.RenderSummaryHTML,

		"isSelected": func(a, b string) bool { return a == b },

		"toJSON": func(v interface{}) template.JS {
			data, _ := json.Marshal(v)
			return template.JS(data)
		},
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("dict: number of arguments must be even")
			}
			result := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key must be string, got %T", values[i])
				}
				result[key] = values[i+1]
			}
			return result, nil
		},
	}
}
