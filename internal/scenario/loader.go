// Package scenario parses YAML scenario files into the step model. Each step
// is a single-key mapping named after the step kind, with either a scalar
// shorthand for the kind's main field or a full field mapping:
//
//	name: settings smoke
//	steps:
//	  - launch: Settings
//	  - tap: General
//	  - waitFor:
//	      label: About
//	      timeout: 5
//	  - home
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// Load reads and parses one scenario file. Parse errors abort the run; they
// are the only errors not folded into step results.
func Load(path string) (entity.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	scn, err := Parse(data)
	if err != nil {
		return entity.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if scn.Name == "" {
		scn.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	scn.SourcePath = path
	return scn, nil
}

// Parse decodes scenario YAML. The returned scenario has no SourcePath; Load
// fills it.
func Parse(data []byte) (entity.Scenario, error) {
	var file struct {
		Name  string     `yaml:"name"`
		Steps []stepNode `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return entity.Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if len(file.Steps) == 0 {
		return entity.Scenario{}, fmt.Errorf("scenario has no steps")
	}

	steps := make([]entity.SkillStep, len(file.Steps))
	for i, n := range file.Steps {
		if err := validate(n.step); err != nil {
			return entity.Scenario{}, fmt.Errorf("step %d (line %d): %w", i+1, n.line, err)
		}
		steps[i] = n.step
	}
	return entity.Scenario{Name: file.Name, Steps: steps}, nil
}

type stepNode struct {
	step entity.SkillStep
	line int
}

func (n *stepNode) UnmarshalYAML(node *yaml.Node) error {
	n.line = node.Line
	step, err := decodeStep(node)
	if err != nil {
		return err
	}
	n.step = step
	return nil
}

func decodeStep(node *yaml.Node) (entity.SkillStep, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		// Bare kinds: "home", "shake", "skipped".
		return entity.SkillStep{Kind: entity.StepKind(node.Value)}, nil

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return entity.SkillStep{}, fmt.Errorf("step must be a single-key mapping")
		}
		key, value := node.Content[0], node.Content[1]
		kind := entity.StepKind(key.Value)

		if kind == entity.StepMeasure {
			return decodeMeasure(value)
		}

		step := entity.SkillStep{Kind: kind}
		switch value.Kind {
		case yaml.ScalarNode:
			if err := setShorthand(&step, value.Value); err != nil {
				return entity.SkillStep{}, err
			}
		case yaml.MappingNode:
			if err := value.Decode(&step); err != nil {
				return entity.SkillStep{}, err
			}
			step.Kind = kind
		default:
			return entity.SkillStep{}, fmt.Errorf("%s: unexpected value shape", kind)
		}
		return step, nil

	default:
		return entity.SkillStep{}, fmt.Errorf("step must be a string or a single-key mapping")
	}
}

// setShorthand maps the scalar form onto the kind's main field.
func setShorthand(step *entity.SkillStep, value string) error {
	switch step.Kind {
	case entity.StepTap, entity.StepWaitFor, entity.StepAssertVisible,
		entity.StepAssertNotVisible, entity.StepScrollTo, entity.StepScreenshot:
		step.Label = value
	case entity.StepType:
		step.Text = value
	case entity.StepKeyPress:
		step.Key = value
	case entity.StepLaunch, entity.StepResetApp:
		step.App = value
	case entity.StepOpenURL:
		step.URL = value
	case entity.StepSwipe:
		step.Direction = value
	case entity.StepSetNetwork:
		step.Network = value
	case entity.StepSwitchTarget:
		step.Target = value
	case entity.StepSelectMenu:
		// "File > Export > PNG" descends one menu level per segment.
		for _, part := range strings.Split(value, ">") {
			if p := strings.TrimSpace(part); p != "" {
				step.MenuPath = append(step.MenuPath, p)
			}
		}
	default:
		return fmt.Errorf("%s takes no value", step.Kind)
	}
	return nil
}

func decodeMeasure(value *yaml.Node) (entity.SkillStep, error) {
	var spec struct {
		Name       string    `yaml:"name"`
		Action     yaml.Node `yaml:"action"`
		Until      string    `yaml:"until"`
		MaxSeconds float64   `yaml:"maxSeconds"`
	}
	if err := value.Decode(&spec); err != nil {
		return entity.SkillStep{}, err
	}
	if spec.Action.Kind == 0 {
		return entity.SkillStep{}, fmt.Errorf("measure needs an action")
	}
	action, err := decodeStep(&spec.Action)
	if err != nil {
		return entity.SkillStep{}, fmt.Errorf("measure action: %w", err)
	}
	return entity.SkillStep{
		Kind: entity.StepMeasure,
		Measure: &entity.MeasureSpec{
			Name:       spec.Name,
			Action:     &action,
			Until:      spec.Until,
			MaxSeconds: spec.MaxSeconds,
		},
	}, nil
}

func validate(step entity.SkillStep) error {
	switch step.Kind {
	case entity.StepTap, entity.StepWaitFor, entity.StepAssertVisible,
		entity.StepAssertNotVisible, entity.StepScrollTo:
		if step.Label == "" {
			return fmt.Errorf("%s needs a label", step.Kind)
		}
	case entity.StepType:
		if step.Text == "" {
			return fmt.Errorf("type needs text")
		}
	case entity.StepKeyPress:
		if step.Key == "" {
			return fmt.Errorf("keyPress needs a key")
		}
	case entity.StepLaunch, entity.StepResetApp:
		if step.App == "" {
			return fmt.Errorf("%s needs an app", step.Kind)
		}
	case entity.StepOpenURL:
		if step.URL == "" {
			return fmt.Errorf("openUrl needs a url")
		}
	case entity.StepSwipe:
		if step.Direction == "" {
			return fmt.Errorf("swipe needs a direction")
		}
	case entity.StepSetNetwork:
		if step.Network == "" {
			return fmt.Errorf("setNetwork needs a network profile")
		}
	case entity.StepSwitchTarget:
		if step.Target == "" {
			return fmt.Errorf("switchTarget needs a target name")
		}
	case entity.StepSelectMenu:
		if len(step.MenuPath) == 0 {
			return fmt.Errorf("selectMenu needs a menu path")
		}
	case entity.StepMeasure:
		if step.Measure == nil || step.Measure.Action == nil {
			return fmt.Errorf("measure needs an action")
		}
		if step.Measure.Until == "" {
			return fmt.Errorf("measure needs an until label")
		}
		return validate(*step.Measure.Action)
	case entity.StepScreenshot, entity.StepHome, entity.StepShake, entity.StepSkipped:
		// No required fields.
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
	return nil
}
