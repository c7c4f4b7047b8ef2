package prompt

import (
	"fmt"
	"strings"

	"medical-consult-assistant/internal/agent"
	"medical-consult-assistant/internal/emotion"
)

const (
	// HistoryWindow is how many trailing entries feed the question prompt.
	HistoryWindow = 10

	questionMaxTokens   = 100
	questionTemperature = 0.7
	questionTopP        = 0.95
	questionTopK        = 40

	emotionContextRecommendations = 2
)

// Composer builds generation requests from session state.
type Composer struct {
	templates Templates
}

func NewComposer(templates Templates) *Composer {
	if len(templates) == 0 {
		templates = DefaultTemplates()
	}
	return &Composer{templates: templates}
}

type QuestionInput struct {
	Text     string
	Language Language
	// History may include the utterance itself; only the last
	// HistoryWindow entries are used.
	History []Turn
	Emotion *emotion.Result
}

// Question assembles the follow-up question prompt.
func (c *Composer) Question(in QuestionInput) agent.Request {
	tmpl := c.templates.For(in.Language)

	var b strings.Builder
	b.WriteString(tmpl.SystemRole)
	b.WriteString("\n")
	b.WriteString(tmpl.Instruction)
	b.WriteString("\n")

	history := lastTurns(in.History, HistoryWindow)
	if len(history) > 0 {
		b.WriteString("\nCONVERSATION HISTORY:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", speakerLabel(t.Patient, EnglishUS), t.Text)
		}
		if hint := PatternHint(patientStatements(history), in.Language); hint != "" {
			b.WriteString("\n")
			b.WriteString(hint)
			b.WriteString("\n")
		}
		b.WriteString("\nBased on this conversation history and medical patterns identified, ")
	}

	fmt.Fprintf(&b, "\n%s \"%s\"\n", tmpl.PatientLabel, in.Text)

	if in.Emotion != nil {
		b.WriteString(emotionContext(in.Emotion))
	}

	b.WriteString("\n")
	b.WriteString(tmpl.GenerateInstruction)
	b.WriteString("\n\nFormat: Each question on a new line with numbers (1., 2., 3.)")

	return agent.Request{
		Prompt:          b.String(),
		MaxOutputTokens: questionMaxTokens,
		Temperature:     questionTemperature,
		TopP:            questionTopP,
		TopK:            questionTopK,
		StopSequences:   []string{tmpl.PatientLabel, "Doctor:", "डॉक्टर:", "4.", "५."},
	}
}

func emotionContext(res *emotion.Result) string {
	recs := res.Recommendations
	if len(recs) > emotionContextRecommendations {
		recs = recs[:emotionContextRecommendations]
	}

	var b strings.Builder
	b.WriteString("\nEMOTIONAL CONTEXT:\n")
	fmt.Fprintf(&b, "- Patient's emotional state: %s\n", res.PrimaryEmotion)
	fmt.Fprintf(&b, "- Alert level: %s\n", res.AlertLevel)
	fmt.Fprintf(&b, "- VADER analysis: %s\n", res.VaderDetails.Description)
	fmt.Fprintf(&b, "- Recommendations: %s\n", strings.Join(recs, ", "))
	b.WriteString("\nConsider this emotional context when crafting your response.\n")
	return b.String()
}

func lastTurns(history []Turn, n int) []Turn {
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
