package tool

import (
	"encoding/json"
	"testing"
)

func TestValidateInput(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"city": map[string]interface{}{
				"type": "string",
			},
			"days": map[string]interface{}{
				"type": "integer",
			},
			"threshold": map[string]interface{}{
				"type": "number",
			},
			"units": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
				},
			},
		},
		"required": []string{"city"},
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "Valid input",
			input:   `{"city": "Paris", "days": 3, "threshold": 0.5, "units": ["c"]}`,
			wantErr: false,
		},
		{
			name:    "Missing required field",
			input:   `{"days": 3}`,
			wantErr: true,
		},
		{
			name:    "Invalid type (string vs integer)",
			input:   `{"city": "Paris", "days": "three"}`,
			wantErr: true,
		},
		{
			name:    "Fractional integer",
			input:   `{"city": "Paris", "days": 1.5}`,
			wantErr: true,
		},
		{
			name:    "Invalid array item type",
			input:   `{"city": "Paris", "units": [123]}`,
			wantErr: true,
		},
		{
			name:    "Extra fields (allowed)",
			input:   `{"city": "Paris", "extra": "field"}`,
			wantErr: false,
		},
		{
			name:    "Not an object",
			input:   `["Paris"]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(schema, json.RawMessage(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateInput_ClosedObject(t *testing.T) {
	schema := map[string]interface{}{
		"type":                 "object",
		"properties":           map[string]interface{}{"a": map[string]interface{}{"type": "boolean"}},
		"additionalProperties": false,
	}

	if err := ValidateInput(schema, json.RawMessage(`{"a": true}`)); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	if err := ValidateInput(schema, json.RawMessage(`{"b": 1}`)); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestValidateInput_NilSchemaAcceptsAnyObject(t *testing.T) {
	if err := ValidateInput(nil, json.RawMessage(`{"x": 1}`)); err != nil {
		t.Fatalf("expected nil schema to accept input, got %v", err)
	}
	if err := ValidateInput(nil, json.RawMessage(`null`)); err != nil {
		t.Fatalf("expected null to be treated as empty object, got %v", err)
	}
}
