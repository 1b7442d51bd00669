package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	data := TemplateData{
		Plaintiff: PlaintiffData{
			Name:      "Maria Santos",
			FirstName: "Maria",
			Email:     "maria@example.com",
		},
		Case: CaseData{
			Number:        "LF-2026-00042",
			FundingStatus: "UNDER_REVIEW",
		},
		Firm: FirmData{
			Name: "Ramirez & Cole LLP",
		},
		Lawyer: LawyerData{
			Name: "Jane Cole, Esq.",
		},
		Contract: ContractData{
			Number:        "FC-2026-00007",
			AdvanceAmount: "$2,500.00",
			FeePercent:    "3.50%",
		},
		Today: TodayData{
			Date: "August 28, 2026",
			Year: "2026",
		},
	}

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "Single variable",
			content:  "Dear {{plaintiff.first_name}},",
			expected: "Dear Maria,",
		},
		{
			name:     "Multiple variables",
			content:  "Case {{case.number}} is {{case.funding_status}}",
			expected: "Case LF-2026-00042 is UNDER_REVIEW",
		},
		{
			name:     "Firm and lawyer",
			content:  "{{lawyer.name}} at {{firm.name}}",
			expected: "Jane Cole, Esq. at Ramirez & Cole LLP",
		},
		{
			name:     "Contract amounts",
			content:  "Advance {{contract.advance_amount}} at {{contract.fee_percent}}",
			expected: "Advance $2,500.00 at 3.50%",
		},
		{
			name:     "Unknown field kept visible",
			content:  "Missing: {{plaintiff.shoe_size}}",
			expected: "Missing: {{plaintiff.shoe_size}}",
		},
		{
			name:     "Unknown category kept visible",
			content:  "Invalid: {{defendant.name}}",
			expected: "Invalid: {{defendant.name}}",
		},
		{
			name:     "Key without a dot",
			content:  "Bare: {{plaintiff}}",
			expected: "Bare: {{plaintiff}}",
		},
		{
			name:     "Malformed tag untouched",
			content:  "Broken {{plaintiff.name",
			expected: "Broken {{plaintiff.name",
		},
		{
			name:     "Whitespace inside braces is not a tag",
			content:  "{{ plaintiff.name }}",
			expected: "{{ plaintiff.name }}",
		},
		{
			name:     "No variables",
			content:  "Plain text message",
			expected: "Plain text message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderTemplate(tt.content, data))
		})
	}
}

func TestExtractVariables(t *testing.T) {
	content := "Dear {{plaintiff.first_name}}, case {{case.number}} ({{case.number}}) as of {{today.date}}"
	assert.Equal(t,
		[]string{"plaintiff.first_name", "case.number", "today.date"},
		ExtractVariables(content))

	assert.Nil(t, ExtractVariables("no placeholders here"))
}
