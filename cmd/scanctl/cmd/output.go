package cmd

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Output format constants.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// printEventJSON writes one event as a compact JSON line.
func printEventJSON(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printEventYAML writes one event as a YAML document.
func printEventYAML(ev Event) error {
	// Decode the raw payload so YAML renders it as structure, not bytes.
	var payload any
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		payload = string(ev.Payload)
	}

	data, err := yaml.Marshal(map[string]any{
		"type":    ev.Type,
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	fmt.Printf("---\n%s", data)
	return nil
}
