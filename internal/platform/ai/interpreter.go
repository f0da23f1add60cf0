// Package ai provides the clinical interpretation client. Lab results are
// sent to the Google Gemini generateContent API and the returned commentary
// is stored verbatim on the lab request. The client never propagates
// failures: every error path degrades to a fixed message so the triggering
// operation always succeeds.
package ai

import (
	"context"
	"fmt"
	"strings"
)

// Fixed messages stored in place of an interpretation.
const (
	MsgNotConfigured = "AI interpretation is not available. Please configure GEMINI_API_KEY."
	MsgFailure       = "Unable to generate AI interpretation at this time. Please try again later."
	MsgNoResults     = "No results available to interpret."
)

// PatientInfo is the demographic block included in the prompt.
type PatientInfo struct {
	Name   string
	Age    int
	Gender string
}

// ResultLine is one parameter's entered value enriched with its catalog
// metadata.
type ResultLine struct {
	Name           string
	Value          string
	Unit           string
	ReferenceRange string
	Flag           string // "H", "L" or "N"
}

// TestSection groups the result lines of a single test.
type TestSection struct {
	TestName string
	Results  []ResultLine
}

// Input is everything the interpreter needs: demographics plus the
// reportable tests (only those whose sample was collected and which have at
// least one non-empty value).
type Input struct {
	Patient PatientInfo
	Tests   []TestSection
}

// Interpreter produces free-text commentary for a set of lab results. It
// returns a message string in every case; failures are converted to the
// fixed messages above.
type Interpreter interface {
	Interpret(ctx context.Context, in Input) string
}

// BuildPrompt renders the structured prompt sent to the model.
func BuildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("You are a medical professional assistant analyzing laboratory test results.\n\n")
	b.WriteString("Patient Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orNA(in.Patient.Name))
	if in.Patient.Age > 0 {
		fmt.Fprintf(&b, "- Age: %d years\n", in.Patient.Age)
	} else {
		b.WriteString("- Age: N/A years\n")
	}
	fmt.Fprintf(&b, "- Gender: %s\n", orNA(in.Patient.Gender))
	b.WriteString("\nLaboratory Test Results:\n\n")

	for _, test := range in.Tests {
		fmt.Fprintf(&b, "\n%s:\n", test.TestName)
		for _, r := range test.Results {
			marker := ""
			switch r.Flag {
			case "H":
				marker = " [HIGH]"
			case "L":
				marker = " [LOW]"
			}
			fmt.Fprintf(&b, "  - %s: %s %s%s", r.Name, r.Value, r.Unit, marker)
			if r.ReferenceRange != "" {
				fmt.Fprintf(&b, " (Reference: %s)", r.ReferenceRange)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(`
Please provide a professional medical interpretation of these results including:
1. Summary of abnormal findings (if any)
2. Clinical significance of the results
3. Possible conditions indicated by the abnormalities
4. Recommendations for follow-up (if needed)

Keep the interpretation clear, concise, and professional. Focus on clinically significant findings.
`)

	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
