package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona fixes the assistant's voice and the prompt templates used by the
// answer pipeline. SystemPrompt sets the domain; UserTemplate receives the
// assembled context and the question via fmt verbs (%s context, %s question).
type Persona struct {
	SystemPrompt string `yaml:"system_prompt"`
	UserTemplate string `yaml:"user_template"`
}

// DefaultPersona returns the built-in Tungra campaign persona
func DefaultPersona() Persona {
	return Persona{
		SystemPrompt: "You are an AI assistant for a Dungeons and Dragons lore archive for my campaign called Tungra. " +
			"Answer questions based on the provided lore context. If the answer is not in the lore, " +
			"please use context clues from the lore to make an educated guess. Do not start with disclaimers. " +
			"Limit your response to a maximum of 3 paragraphs.",
		UserTemplate: "Context:\n%s\n\nQuestion: %s\n\n" +
			"Answer questions based on the provided lore context. If the answer is not in the lore, " +
			"please use context clues from the lore to make an educated guess. Do not start with disclaimers. " +
			"Limit your response to a maximum of 3 paragraphs.",
	}
}

// LoadPersona loads persona configuration from a YAML file
func LoadPersona(filePath string) (*Persona, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file: %w", err)
	}

	persona := DefaultPersona()
	if err := yaml.Unmarshal(data, &persona); err != nil {
		return nil, fmt.Errorf("failed to parse persona YAML: %w", err)
	}

	return &persona, nil
}
