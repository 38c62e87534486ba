package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
)

// Policy holds the tunable detection and recovery numbers. The exact cut
// lines between mild/moderate/severe and the strategy horizons are a
// product decision, so they load from an optional yaml file instead of
// being hard constants.
type Policy struct {
	MildExcess     int `yaml:"mild_excess"`
	ModerateExcess int `yaml:"moderate_excess"`
	SevereExcess   int `yaml:"severe_excess"`

	// SafetyFloor is the minimum daily calorie target. Redistribution
	// and recovery never set a day below it.
	SafetyFloor int `yaml:"safety_floor"`

	GentleDays   int `yaml:"gentle_days"`
	ModerateDays int `yaml:"moderate_days"`
	QuickDays    int `yaml:"quick_days"`

	// MaxPlanDays bounds automatic duration extension when floor
	// clamping leaves residual calories.
	MaxPlanDays int `yaml:"max_plan_days"`
}

func DefaultPolicy() Policy {
	return Policy{
		MildExcess:     300,
		ModerateExcess: 500,
		SevereExcess:   1000,
		SafetyFloor:    1200,
		GentleDays:     7,
		ModerateDays:   4,
		QuickDays:      3,
		MaxPlanDays:    28,
	}
}

// LoadPolicy reads overrides from path. A missing file yields the
// defaults; a present but unreadable or invalid file is an error so a
// corrupted config is surfaced instead of silently ignored.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return Policy{}, fmt.Errorf("read policy file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.MildExcess <= 0 {
		return fmt.Errorf("mild_excess must be > 0")
	}
	if p.ModerateExcess <= p.MildExcess {
		return fmt.Errorf("moderate_excess must be > mild_excess")
	}
	if p.SevereExcess <= p.ModerateExcess {
		return fmt.Errorf("severe_excess must be > moderate_excess")
	}
	if p.SafetyFloor <= 0 {
		return fmt.Errorf("safety_floor must be > 0")
	}
	if p.GentleDays <= 0 || p.ModerateDays <= 0 || p.QuickDays <= 0 {
		return fmt.Errorf("strategy day counts must be > 0")
	}
	if p.QuickDays > p.ModerateDays || p.ModerateDays > p.GentleDays {
		return fmt.Errorf("strategy day counts must satisfy quick <= moderate <= gentle")
	}
	if p.MaxPlanDays < p.GentleDays {
		return fmt.Errorf("max_plan_days must be >= gentle_days")
	}
	return nil
}

// Classify maps an excess to its trigger type. Ranges are half-open so a
// boundary value classifies exactly one way. Returns ok=false below the
// mild threshold.
func (p Policy) Classify(excess int) (model.TriggerType, bool) {
	switch {
	case excess >= p.SevereExcess:
		return model.TriggerSevere, true
	case excess >= p.ModerateExcess:
		return model.TriggerModerate, true
	case excess >= p.MildExcess:
		return model.TriggerMild, true
	}
	return "", false
}
