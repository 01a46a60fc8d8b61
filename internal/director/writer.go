package director

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// WriteScript writes a script to a YAML file
func WriteScript(script *Script, path string) error {
	data, err := yaml.Marshal(script)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScript reads a script and orders its events by time. Unknown event
// types are rejected.
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}

	for i, ev := range script.Events {
		if err := ev.validate(); err != nil {
			return nil, fmt.Errorf("script %s, event %d: %w", path, i, err)
		}
	}
	sort.SliceStable(script.Events, func(i, j int) bool {
		return script.Events[i].Time < script.Events[j].Time
	})

	return &script, nil
}

func (e Event) validate() error {
	switch e.Type {
	case EventWheel, EventTouchStart, EventTouchMove, EventTouchEnd, EventPointer, EventPointerLeave:
	case EventKey:
		if _, ok := keyNames[e.Key]; !ok {
			return fmt.Errorf("unknown key %q", e.Key)
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Time < 0 {
		return fmt.Errorf("negative time %f", e.Time)
	}
	return nil
}
