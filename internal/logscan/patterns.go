package logscan

import (
	"regexp"

	"github.com/devskills/skillkit/internal/scan"
)

// SensitivePattern classifies argument text that must never reach a log.
type SensitivePattern struct {
	Regexp      *regexp.Regexp
	Type        string
	Description string
}

func sensitive(expr, typ, description string) SensitivePattern {
	return SensitivePattern{
		Regexp:      regexp.MustCompile(`(?i)` + expr),
		Type:        typ,
		Description: description,
	}
}

// sensitivePatterns is ordered most to least specific per identifier
// family. Only the first match per statement is reported.
var sensitivePatterns = []SensitivePattern{
	sensitive(`\b(?:ssn|social_security)\b`, "ssn", "Social Security Number"),
	sensitive(`\b(?:patient\.?name|patient_name|patientName)\b`, "patient_name", "Patient Name"),
	sensitive(`\b(?:mrn|medical_record|medicalRecord)\b`, "mrn", "Medical Record Number"),
	sensitive(`\b(?:dob|date_of_birth|dateOfBirth|birthDate|birth_date)\b`, "dob", "Date of Birth"),
	sensitive(`\b(?:diagnosis|diagnoses)\b`, "diagnosis", "Diagnosis"),
	sensitive(`\b(?:treatment|medication|prescription)\b`, "treatment", "Treatment or Medication"),
	sensitive(`\b(?:address|street|city|zip)\b`, "address", "Address"),
	sensitive(`\b(?:phone|telephone|mobile|cell)\b`, "phone", "Phone Number"),
	sensitive(`\bemail\b`, "email", "Email Address"),
	sensitive(`(?:patient|member|subscriber|record)\s*[=:]\s*`, "object_dump", "Sensitive Object Reference"),
	sensitive(`\.to_dict\(\)|\.toJSON\(\)|JSON\.stringify\s*\(\s*(?:patient|member|record)`, "serialization", "Sensitive Object Serialization"),
	sensitive(`f["'].*\{.*patient.*\}`, "f_string", "F-string with Patient Data"),
	sensitive(`\$\{.*patient.*\}`, "template_literal", "Template Literal with Patient Data"),
	sensitive(`%s.*patient|patient.*%s`, "format_string", "Format String with Patient Data"),
	sensitive(`exception.*patient|patient.*exception`, "exception_context", "Exception with Patient Context"),
	sensitive(`error.*patient|patient.*error`, "error_context", "Error with Patient Context"),
}

// safePatterns marks statements that log identifiers in an already
// redacted or hashed form. A safe match suppresses the statement.
var safePatterns = mustAll(
	`patient_id\s*=\s*["']?[a-f0-9-]+["']?`,
	`patient\.id\b`,
	`\[REDACTED\]`,
	`\*{3,}`,
	`hash\(|sha256|md5`,
	`mask\(|redact\(`,
)

func isSafeStatement(stmt string) bool {
	for _, p := range safePatterns {
		if p.MatchString(stmt) {
			return true
		}
	}
	return false
}

// riskScores rates each finding type 0-100 by how damaging the
// leaked data is. Types missing from the map score 70.
var riskScores = map[string]int{
	"ssn":               100,
	"patient_name":      80,
	"mrn":               85,
	"dob":               75,
	"diagnosis":         90,
	"treatment":         85,
	"address":           70,
	"phone":             65,
	"email":             60,
	"object_dump":       95,
	"serialization":     90,
	"f_string":          80,
	"template_literal":  80,
	"format_string":     80,
	"exception_context": 85,
	"error_context":     80,
}

// riskFor maps a finding type to its score and severity band.
func riskFor(typ string) (int, scan.Severity) {
	score, ok := riskScores[typ]
	if !ok {
		score = 70
	}
	switch {
	case score >= 90:
		return score, scan.SeverityCritical
	case score >= 70:
		return score, scan.SeverityHigh
	case score >= 50:
		return score, scan.SeverityMedium
	default:
		return score, scan.SeverityLow
	}
}

var commonRemediation = []string{
	"Remove the sensitive value from the log statement",
	"Log an opaque record identifier instead",
	"Add a redaction filter to the logging framework",
}

var typeRemediation = map[string][]string{
	"ssn":               {"Never log SSNs, keep at most a hash or the last four digits"},
	"patient_name":      {"Log the record ID instead of the name"},
	"object_dump":       {"Log selected non-sensitive fields instead of the whole object"},
	"serialization":     {"Serialize through a view that excludes sensitive fields"},
	"exception_context": {"Sanitize exception messages before logging them"},
	"f_string":          {"Interpolate IDs or hashed values instead of raw fields"},
}

// remediationFor returns type-specific advice followed by the common steps.
func remediationFor(typ string) []string {
	steps := make([]string, 0, len(commonRemediation)+1)
	steps = append(steps, typeRemediation[typ]...)
	return append(steps, commonRemediation...)
}
