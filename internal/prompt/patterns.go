package prompt

import (
	"fmt"
	"strings"
)

var medicalPatterns = []struct {
	name     string
	keywords []string
}{
	{"pain_symptoms", []string{"pain", "hurt", "ache", "sore", "burning", "stabbing", "throbbing", "sharp", "dull"}},
	{"respiratory", []string{"cough", "breathing", "breath", "chest", "wheeze", "shortness", "difficulty breathing"}},
	{"gastrointestinal", []string{"stomach", "nausea", "vomit", "diarrhea", "constipation", "bloating", "appetite"}},
	{"neurological", []string{"headache", "dizzy", "dizziness", "confusion", "memory", "concentration", "weakness"}},
	{"cardiovascular", []string{"heart", "palpitations", "chest pain", "pressure", "racing heart", "irregular"}},
	{"systemic", []string{"fever", "tired", "fatigue", "weakness", "energy", "sleep", "weight"}},
	{"mental_health", []string{"stress", "anxiety", "depression", "worried", "panic", "mood", "emotional"}},
	{"timeline", []string{"days", "weeks", "months", "since", "started", "began", "first time", "getting worse", "better"}},
}

// MedicalPatterns returns, in fixed category order, every category with a
// keyword present in the combined statements.
func MedicalPatterns(statements []string) []string {
	if len(statements) == 0 {
		return nil
	}
	combined := strings.ToLower(strings.Join(statements, " "))

	var found []string
	for _, p := range medicalPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(combined, kw) {
				found = append(found, p.name)
				break
			}
		}
	}
	return found
}

// PatternHint renders the categories found in statements as a prompt hint,
// or "" when nothing matched.
func PatternHint(statements []string, lang Language) string {
	found := MedicalPatterns(statements)
	if len(found) == 0 {
		return ""
	}
	list := strings.Join(found, ", ")
	if lang == HindiIN {
		return fmt.Sprintf("चिकित्सा पैटर्न विश्लेषण: मरीज़ ने निम्नलिखित श्रेणियों में लक्षण बताए हैं: %s। इन पैटर्न के आधार पर विस्तृत प्रश्न पूछें।", list)
	}
	return fmt.Sprintf("MEDICAL PATTERN ANALYSIS: Patient has mentioned symptoms in the following categories: %s. "+
		"Focus questions on exploring these patterns in detail.", list)
}
