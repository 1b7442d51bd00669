package services

import (
	"regexp"
	"strings"
)

// variableRegex matches {{variable.path}} patterns
var variableRegex = regexp.MustCompile(`\{\{([a-zA-Z0-9_.]+)\}\}`)

// RenderTemplate replaces {{variable}} placeholders with actual values
// from TemplateData. Unknown placeholders are left intact so a bad
// template is visible rather than silently blanked.
func RenderTemplate(content string, data TemplateData) string {
	return variableRegex.ReplaceAllStringFunc(content, func(match string) string {
		// Extract variable key from {{key}}
		key := strings.TrimPrefix(strings.TrimSuffix(match, "}}"), "{{")

		// Look up the value
		value := getValueByKey(key, data)
		if value == "" {
			// Return the original placeholder if no value found
			return match
		}
		return value
	})
}

// ExtractVariables returns the distinct placeholder keys used in content
func ExtractVariables(content string) []string {
	matches := variableRegex.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{})
	var keys []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	}
	return keys
}

// getValueByKey retrieves a value from TemplateData using a dot-notation key
func getValueByKey(key string, data TemplateData) string {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return ""
	}

	category := parts[0]
	field := parts[1]

	switch category {
	case "plaintiff":
		return getPlaintiffValue(field, data.Plaintiff)
	case "case":
		return getCaseValue(field, data.Case)
	case "firm":
		return getFirmValue(field, data.Firm)
	case "lawyer":
		return getLawyerValue(field, data.Lawyer)
	case "contract":
		return getContractValue(field, data.Contract)
	case "today":
		return getTodayValue(field, data.Today)
	default:
		return ""
	}
}

func getPlaintiffValue(field string, plaintiff PlaintiffData) string {
	switch field {
	case "name":
		return plaintiff.Name
	case "first_name":
		return plaintiff.FirstName
	case "email":
		return plaintiff.Email
	case "phone":
		return plaintiff.Phone
	case "address":
		return plaintiff.Address
	default:
		return ""
	}
}

func getCaseValue(field string, caseData CaseData) string {
	switch field {
	case "number":
		return caseData.Number
	case "type":
		return caseData.Type
	case "description":
		return caseData.Description
	case "funding_status":
		return caseData.FundingStatus
	case "applied_at":
		return caseData.AppliedAt
	case "incident_date":
		return caseData.IncidentDate
	default:
		return ""
	}
}

func getFirmValue(field string, firm FirmData) string {
	switch field {
	case "name":
		return firm.Name
	case "phone":
		return firm.Phone
	case "email":
		return firm.Email
	case "city":
		return firm.City
	default:
		return ""
	}
}

func getLawyerValue(field string, lawyer LawyerData) string {
	switch field {
	case "name":
		return lawyer.Name
	case "email":
		return lawyer.Email
	case "phone":
		return lawyer.Phone
	default:
		return ""
	}
}

func getContractValue(field string, contract ContractData) string {
	switch field {
	case "number":
		return contract.Number
	case "advance_amount":
		return contract.AdvanceAmount
	case "fee_percent":
		return contract.FeePercent
	case "status":
		return contract.Status
	default:
		return ""
	}
}

func getTodayValue(field string, today TodayData) string {
	switch field {
	case "date":
		return today.Date
	case "year":
		return today.Year
	default:
		return ""
	}
}
