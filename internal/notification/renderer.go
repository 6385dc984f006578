package notification

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

type templateDef struct {
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
}

type compiled struct {
	subject *template.Template
	text    *template.Template
}

// Renderer turns a kind and payload into a Message.
type Renderer struct {
	templates map[Kind]compiled
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return ParseTemplates(templatesYAML)
}

// ParseTemplates builds a Renderer from a YAML document keyed by kind. Every
// known kind must be present.
func ParseTemplates(doc []byte) (*Renderer, error) {
	var defs map[string]templateDef
	if err := yaml.Unmarshal(doc, &defs); err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}

	r := &Renderer{templates: make(map[Kind]compiled, len(defs))}
	for name, def := range defs {
		subject, err := template.New(name + ".subject").Option("missingkey=zero").Parse(def.Subject)
		if err != nil {
			return nil, fmt.Errorf("template %s subject: %w", name, err)
		}
		text, err := template.New(name + ".text").Option("missingkey=zero").Parse(def.Text)
		if err != nil {
			return nil, fmt.Errorf("template %s text: %w", name, err)
		}
		r.templates[Kind(name)] = compiled{subject: subject, text: text}
	}
	for _, k := range Kinds {
		if _, ok := r.templates[k]; !ok {
			return nil, fmt.Errorf("missing notification template %q", k)
		}
	}
	return r, nil
}

// Render executes the kind's templates against the payload.
func (r *Renderer) Render(kind Kind, payload Payload) (Message, error) {
	t, ok := r.templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}
	data := map[string]string(payload)
	if data == nil {
		data = map[string]string{}
	}

	var subject, text bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", kind, err)
	}
	return Message{Kind: kind, Subject: subject.String(), Text: text.String(), Payload: payload}, nil
}
