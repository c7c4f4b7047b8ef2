package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QuestionTemplate holds the fixed wording of the follow-up question prompt.
type QuestionTemplate struct {
	SystemRole          string `yaml:"system_role"`
	Instruction         string `yaml:"instruction"`
	PatientLabel        string `yaml:"patient_label"`
	GenerateInstruction string `yaml:"generate_instruction"`
}

// Templates is the language -> question template table.
type Templates map[Language]QuestionTemplate

var englishTemplate = QuestionTemplate{
	SystemRole: "You are an AI assistant for a doctor during a medical consultation. " +
		"While the doctor and patient are speaking over call, the chatbot is expected to understand the transcripted text " +
		"and suggest multiple relevant questions which are intended to facilitate the conversation.",
	Instruction: "Based on the following medical history of the patient, generate 3 distinct, short, and clinically appropriate " +
		"follow-up questions for Doctor to ask. Each question should explore different aspects of the patient's condition " +
		"(symptoms, timeline, severity, triggers, etc.).",
	PatientLabel:        "Patient:",
	GenerateInstruction: "Generate 3 brief, relevant follow-up questions that a doctor might ask (numbered 1., 2., 3.):",
}

// DefaultTemplates returns the built-in table. Only en-US has a question
// template; other languages resolve to it through For.
func DefaultTemplates() Templates {
	return Templates{EnglishUS: englishTemplate}
}

// For returns the template for lang, or the en-US template.
func (t Templates) For(lang Language) QuestionTemplate {
	if tmpl, ok := t[lang]; ok {
		return tmpl
	}
	if tmpl, ok := t[EnglishUS]; ok {
		return tmpl
	}
	return englishTemplate
}

// LoadTemplates merges a YAML file of language-keyed templates over the
// defaults. Fields left empty in the file keep the en-US wording.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: read templates: %w", err)
	}

	var raw map[string]QuestionTemplate
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prompt: parse templates %s: %w", path, err)
	}

	for tag, override := range raw {
		lang := Language(tag)
		templates[lang] = merge(templates.For(lang), override)
	}
	return templates, nil
}

func merge(base, override QuestionTemplate) QuestionTemplate {
	if override.SystemRole != "" {
		base.SystemRole = override.SystemRole
	}
	if override.Instruction != "" {
		base.Instruction = override.Instruction
	}
	if override.PatientLabel != "" {
		base.PatientLabel = override.PatientLabel
	}
	if override.GenerateInstruction != "" {
		base.GenerateInstruction = override.GenerateInstruction
	}
	return base
}
