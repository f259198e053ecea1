package intent

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"vaspx-assistant/internal/store"
)

// KnowledgeFile is the on-disk layout of a knowledge base seed.
type KnowledgeFile struct {
	Categories []store.Category `yaml:"categories"`
}

// LoadKnowledgeFile reads an ordered category list from a YAML file. The
// file replaces the built-in knowledge base entirely.
func LoadKnowledgeFile(path string) ([]store.Category, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var kf KnowledgeFile
	if err := yaml.Unmarshal(b, &kf); err != nil {
		return nil, fmt.Errorf("parse knowledge file %s: %w", path, err)
	}
	out := make([]store.Category, 0, len(kf.Categories))
	for i, c := range kf.Categories {
		c = normalizeCategory(c)
		if c.Name == "" || len(c.Patterns) == 0 || len(c.Responses) == 0 {
			return nil, fmt.Errorf("knowledge file %s: category #%d needs a name, patterns and responses", path, i+1)
		}
		out = append(out, c)
	}
	return out, nil
}

// normalizeCategory trims the name, lowercases triggers and drops blank
// entries. A blank trigger would match every input.
func normalizeCategory(c store.Category) store.Category {
	out := store.Category{Name: strings.TrimSpace(c.Name)}
	for _, p := range c.Patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out.Patterns = append(out.Patterns, p)
		}
	}
	for _, r := range c.Responses {
		if strings.TrimSpace(r) != "" {
			out.Responses = append(out.Responses, r)
		}
	}
	return out
}

// DefaultKnowledgeBase is the built-in category table. Order matters: the
// first matching category wins.
func DefaultKnowledgeBase() []store.Category {
	return []store.Category{
		{
			Name:     "greetings",
			Patterns: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"},
			Responses: []string{
				"Hello! How can I help you today?",
				"Hi there! What can I do for you?",
				"Hey! Ask me anything about Vasp Technologies.",
			},
		},
		{
			Name:     "thanks",
			Patterns: []string{"thank", "appreciate"},
			Responses: []string{
				"You're welcome! Is there anything else I can help with?",
				"Happy to help!",
			},
		},
		{
			Name:     "services",
			Patterns: []string{"service", "offer", "what do you do", "solutions"},
			Responses: []string{
				"We build blockchain solutions, web and mobile applications, and provide technology consulting.",
				"Our services cover blockchain development, custom web applications and IT consulting. Pick \"Our services\" in the menu for details.",
			},
		},
		{
			Name:     "contact",
			Patterns: []string{"contact", "email", "phone", "reach you", "address"},
			Responses: []string{
				"You can reach us at support@vasptechnologies.com.",
				"Drop us an email at support@vasptechnologies.com and we'll get back to you within one business day.",
			},
		},
		{
			Name:     "pricing",
			Patterns: []string{"price", "pricing", "cost", "how much", "quote"},
			Responses: []string{
				"Our pricing depends on the scope of your project. Contact us for a free quote!",
				"Every project is different, so we prepare custom quotes. Email support@vasptechnologies.com to get one.",
			},
		},
		{
			Name:     "support",
			Patterns: []string{"help", "support", "problem", "issue", "not working"},
			Responses: []string{
				"I'm here to help! Describe your issue or contact our support team at support@vasptechnologies.com.",
				"Sorry to hear you're having trouble. Our support team is reachable at support@vasptechnologies.com.",
			},
		},
		{
			Name:     "about",
			Patterns: []string{"about", "who are you", "company", "vasp"},
			Responses: []string{
				"Vasp Technologies is a software company building blockchain, web and cloud solutions.",
				"I'm VaspX, the assistant of Vasp Technologies. We design and build software for businesses of every size.",
			},
		},
		{
			Name:     "goodbye",
			Patterns: []string{"bye", "see you"},
			Responses: []string{
				"Goodbye! Have a great day.",
				"See you soon!",
			},
		},
	}
}
