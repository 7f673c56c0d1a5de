package sendriskalert

import (
	"fmt"
	"strings"
)

type template struct {
	Subject string
	Body    string
}

var templates = map[string]template{
	TypeRiskAlert: {
		Subject: "Risk alert for {{condoName}}",
		Body: "The latest analysis of {{condoName}} ({{city}}) flags open risk procedures. " +
			"Health score {{globalScore}}/100, risk {{riskScore}}/30. " +
			"Estimated works up to {{renovationTotalMax}} €.",
	},
	TypeRiskCleared: {
		Subject: "{{condoName}}: risk alert lifted",
		Body:    "No open risk procedure remains on {{condoName}} ({{city}}). Health score {{globalScore}}/100.",
	},
}

// renderTemplate substitutes {{key}} placeholders and drops the ones with
// no value.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		value := ""
		switch t := v.(type) {
		case string:
			value = t
		case nil:
		default:
			value = fmt.Sprintf("%v", t)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
