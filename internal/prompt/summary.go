package prompt

import (
	"fmt"
	"sort"
	"strings"

	"medical-consult-assistant/internal/agent"
)

type SummaryKind string

const (
	SummaryBrief         SummaryKind = "brief"
	SummaryComprehensive SummaryKind = "comprehensive"
)

// ParseSummaryKind defaults to SummaryBrief.
func ParseSummaryKind(s string) SummaryKind {
	if strings.EqualFold(strings.TrimSpace(s), string(SummaryComprehensive)) {
		return SummaryComprehensive
	}
	return SummaryBrief
}

const (
	summaryTimelineLen = 5
	topEmotionPatterns = 3
)

type SummaryInput struct {
	History  []Turn
	Emotions []EmotionMark
	Language Language
	Kind     SummaryKind
}

// Summary builds the conversation summary request.
func (c *Composer) Summary(in SummaryInput) agent.Request {
	var convo strings.Builder
	for _, t := range in.History {
		fmt.Fprintf(&convo, "%s: %s\n", speakerLabel(t.Patient, in.Language), t.Text)
	}
	timeline := emotionTimeline(in.Emotions)

	var p string
	switch {
	case in.Language == HindiIN && in.Kind == SummaryComprehensive:
		p = "आप एक चिकित्सा सहायक हैं। निम्नलिखित डॉक्टर-मरीज़ की बातचीत का विस्तृत सारांश प्रदान करें:\n\n" +
			"बातचीत:\n" + convo.String() + timeline + "\n\n" +
			"कृपया निम्नलिखित शामिल करें:\n" +
			"1. मुख्य लक्षण और शिकायतें\n" +
			"2. मरीज़ की भावनात्मक स्थिति\n" +
			"3. महत्वपूर्ण चिकित्सा जानकारी\n" +
			"4. सुझावित अगले कदम\n" +
			"5. डॉक्टर के लिए सिफारिशें\n\n" +
			"संक्षिप्त और स्पष्ट हिंदी में लिखें:"
	case in.Language == HindiIN:
		p = "निम्नलिखित डॉक्टर-मरीज़ की बातचीत का संक्षिप्त सारांश दें:\n\n" +
			convo.String() + timeline + "\n\n" +
			"मुख्य बिंदु और लक्षण हिंदी में बताएं:"
	case in.Kind == SummaryComprehensive:
		p = "You are a medical assistant. Provide a comprehensive summary of this doctor-patient conversation:\n\n" +
			"Conversation:\n" + convo.String() + timeline + "\n\n" +
			"Please include:\n" +
			"1. Chief complaints and symptoms\n" +
			"2. Patient's emotional state\n" +
			"3. Key medical information mentioned\n" +
			"4. Suggested next steps\n" +
			"5. Recommendations for the doctor\n\n" +
			"Write a clear, professional medical summary:"
	default:
		p = "Summarize this doctor-patient conversation briefly:\n\n" +
			convo.String() + timeline + "\n\n" +
			"Provide key points and symptoms mentioned:"
	}

	maxTokens := int32(150)
	if in.Kind == SummaryComprehensive {
		maxTokens = 300
	}
	return agent.Request{
		Prompt:          p,
		MaxOutputTokens: maxTokens,
		Temperature:     0.3,
		TopP:            0.9,
	}
}

func emotionTimeline(marks []EmotionMark) string {
	if len(marks) == 0 {
		return ""
	}
	recent := marks
	if len(recent) > summaryTimelineLen {
		recent = recent[len(recent)-summaryTimelineLen:]
	}
	names := make([]string, len(recent))
	for i, m := range recent {
		names[i] = m.Emotion
	}
	out := "\nEmotion Timeline: " + strings.Join(names, ", ")

	alerts := 0
	for _, m := range marks {
		if m.AlertLevel != "NONE" {
			alerts++
		}
	}
	if alerts > 0 {
		out += fmt.Sprintf("\nAlert Count: %d emotional alerts detected", alerts)
	}
	return out
}

// SummaryErrorText is shown in place of a summary the backend failed to produce.
func SummaryErrorText(lang Language) string {
	if lang == HindiIN {
		return "बातचीत का सारांश तैयार करने में त्रुटि हुई।"
	}
	return "Error generating conversation summary."
}

// Insights is the structured reading of an insight response.
type Insights struct {
	Symptoms          []string `json:"symptoms"`
	Concerns          []string `json:"concerns"`
	EmotionalPatterns []string `json:"emotional_patterns"`
	Recommendations   []string `json:"recommendations"`
	RawAnalysis       string   `json:"raw_analysis,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// EmptyInsights has every list non-nil so it encodes as [].
func EmptyInsights() Insights {
	return Insights{
		Symptoms:          []string{},
		Concerns:          []string{},
		EmotionalPatterns: []string{},
		Recommendations:   []string{},
	}
}

// EmotionalPatterns lists the most frequent emotions as "emotion: N times".
// Equal counts keep first-occurrence order.
func EmotionalPatterns(marks []EmotionMark) []string {
	counts := map[string]int{}
	var order []string
	for _, m := range marks {
		if _, ok := counts[m.Emotion]; !ok {
			order = append(order, m.Emotion)
		}
		counts[m.Emotion]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > topEmotionPatterns {
		order = order[:topEmotionPatterns]
	}

	out := make([]string, len(order))
	for i, e := range order {
		out[i] = fmt.Sprintf("%s: %d times", e, counts[e])
	}
	return out
}

// Insights builds the insight extraction request from patient statements.
func (c *Composer) Insights(history []Turn, patterns []string, lang Language) agent.Request {
	var statements strings.Builder
	for _, s := range patientStatements(history) {
		fmt.Fprintf(&statements, "Patient: %s\n", s)
	}
	joined := strings.Join(patterns, ", ")

	var p string
	if lang == HindiIN {
		p = "निम्नलिखित मरीज़ के बयानों का विश्लेषण करें और मुख्य चिकित्सा जानकारी निकालें:\n\n" +
			"मरीज़ के बयान:\n" + statements.String() + "\n" +
			"भावनात्मक पैटर्न: " + joined + "\n\n" +
			"कृपया निम्नलिखित प्रारूप में जवाब दें:\n" +
			"लक्षण: (मुख्य शारीरिक लक्षण)\n" +
			"चिंताएं: (मरीज़ की मुख्य चिंताएं)\n" +
			"सिफारिशें: (डॉक्टर के लिए सुझाव)"
	} else {
		p = "Analyze the following patient statements and extract key medical information:\n\n" +
			"Patient Statements:\n" + statements.String() + "\n" +
			"Emotional Patterns: " + joined + "\n\n" +
			"Please respond in the following format:\n" +
			"Symptoms: (main physical symptoms mentioned)\n" +
			"Concerns: (patient's main concerns or worries)\n" +
			"Recommendations: (suggestions for the doctor)"
	}

	return agent.Request{
		Prompt:          p,
		MaxOutputTokens: 200,
		Temperature:     0.2,
		TopP:            0.9,
	}
}

var insightSections = []struct {
	prefixes []string
	section  string
}{
	{[]string{"symptoms:", "लक्षण:"}, "symptoms"},
	{[]string{"concerns:", "चिंताएं:"}, "concerns"},
	{[]string{"recommendations:", "सिफारिशें:"}, "recommendations"},
}

// ParseInsights splits a "Symptoms:/Concerns:/Recommendations:" response
// into lists. Lines after a header belong to that header's section.
func ParseInsights(raw string, patterns []string) Insights {
	out := EmptyInsights()
	if patterns != nil {
		out.EmotionalPatterns = patterns
	}
	out.RawAnalysis = strings.TrimSpace(raw)

	sections := map[string]*[]string{
		"symptoms":        &out.Symptoms,
		"concerns":        &out.Concerns,
		"recommendations": &out.Recommendations,
	}

	var current *[]string
	for _, line := range strings.Split(out.RawAnalysis, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if header, ok := sectionFor(line); ok {
			current = sections[header]
			if _, content, found := strings.Cut(line, ":"); found {
				if content = strings.TrimSpace(content); content != "" {
					*current = append(*current, content)
				}
			}
			continue
		}
		if current != nil {
			*current = append(*current, line)
		}
	}
	return out
}

func sectionFor(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, s := range insightSections {
		for _, p := range s.prefixes {
			if strings.HasPrefix(lower, p) {
				return s.section, true
			}
		}
	}
	return "", false
}
