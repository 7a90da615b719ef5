package main

import (
	"fmt"
	"os"

	"github.com/harunnryd/tsuyaku/internal/config"
	"github.com/harunnryd/tsuyaku/internal/model/contract"

	"gopkg.in/yaml.v3"
)

// conversationFile is the on-disk request format accepted by chat and
// convert. JSON files parse too, since YAML is a superset.
type conversationFile struct {
	Model    string                 `yaml:"model"`
	Messages []contract.Message     `yaml:"messages"`
	Tools    []toolFileEntry        `yaml:"tools"`
	Options  map[string]interface{} `yaml:"options"`
}

type toolFileEntry struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Parameters  map[string]interface{} `yaml:"parameters"`
}

func loadConversation(path string) (contract.CompletionRequest, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return contract.CompletionRequest{}, err
	}

	raw, err := os.ReadFile(expanded)
	if err != nil {
		return contract.CompletionRequest{}, fmt.Errorf("read conversation %s: %w", expanded, err)
	}
	return parseConversation(raw)
}

func parseConversation(raw []byte) (contract.CompletionRequest, error) {
	var file conversationFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return contract.CompletionRequest{}, fmt.Errorf("parse conversation: %w", err)
	}

	req := contract.CompletionRequest{
		Model:    file.Model,
		Messages: file.Messages,
		Options:  file.Options,
	}
	for _, t := range file.Tools {
		def := contract.ToolDef{Name: t.Name, Description: t.Description}
		if t.Parameters != nil {
			def.Parameters = normalizeYAML(t.Parameters).(map[string]interface{})
		}
		req.Tools = append(req.Tools, def)
	}
	return req, nil
}

// normalizeYAML rewrites nested maps with non-string keys, which yaml.v3
// produces for keys like `1:` and encoding/json cannot marshal.
func normalizeYAML(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
