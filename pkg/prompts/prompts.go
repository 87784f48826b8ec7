package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed prompts.yaml
var embeddedPrompts []byte

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Script ScriptPrompts `yaml:"script"`
}

type SystemPrompts struct {
	Default  string `yaml:"default"`
	Dialogue string `yaml:"dialogue"`
}

type ScriptPrompts struct {
	Single   string `yaml:"single"`
	Dialogue string `yaml:"dialogue"`
}

type ScriptParams struct {
	Topic     string
	WordCount int
	Language  string
}

type DialogueParams struct {
	Topic       string
	WordCount   int
	Language    string
	SpeakerList string
	MinSpeakers int
}

// Load reads prompts.yaml from the working directory, falling back to the
// embedded defaults when the file is absent.
func Load() (*Prompts, error) {
	if _, err := os.Stat(defaultPromptsPath); err == nil {
		return LoadFrom(defaultPromptsPath)
	}
	return parse(embeddedPrompts)
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	return &p, nil
}

func (p *Prompts) RenderScript(params ScriptParams) (string, error) {
	return render(p.Script.Single, params)
}

func (p *Prompts) RenderDialogue(params DialogueParams) (string, error) {
	return render(p.Script.Dialogue, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
