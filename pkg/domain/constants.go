package domain

import "fmt"

// Granularity controls how much work a single step performs.
type Granularity string

const (
	// GranularityScan selects and scans a node in one step.
	GranularityScan Granularity = "scan"
	// GranularitySelect spends one step selecting the node and another scanning it.
	GranularitySelect Granularity = "select"
)

// ParseGranularity accepts "" as the default.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "", GranularityScan:
		return GranularityScan, nil
	case GranularitySelect:
		return GranularitySelect, nil
	}
	return "", &ConfigurationError{Field: "granularity", Reason: "expected scan or select", Value: s, Index: -1}
}

// LabelingMode controls which edges a scan may label across.
type LabelingMode string

const (
	// LabelingResidual follows any edge with positive residual capacity,
	// including backward edges that carry flow.
	LabelingResidual LabelingMode = "residual"
	// LabelingForward only follows outgoing edges with spare capacity. It
	// never cancels flow, so it can terminate below the maximum flow, with a
	// cut whose capacity exceeds the flow value.
	LabelingForward LabelingMode = "forward"
)

// ParseLabelingMode accepts "" as the default.
func ParseLabelingMode(s string) (LabelingMode, error) {
	switch LabelingMode(s) {
	case "", LabelingResidual:
		return LabelingResidual, nil
	case LabelingForward:
		return LabelingForward, nil
	}
	return "", &ConfigurationError{Field: "labeling", Reason: "expected residual or forward", Value: s, Index: -1}
}

// Config carries the engine options that must survive persistence.
type Config struct {
	Granularity  Granularity  `json:"granularity"`
	Labeling     LabelingMode `json:"labeling"`
	HistoryLimit int          `json:"history_limit,omitempty"`
}

// DefaultConfig is the canonical behavior.
func DefaultConfig() Config {
	return Config{Granularity: GranularityScan, Labeling: LabelingResidual}
}

// Validate fills defaults and rejects unknown values.
func (c Config) Validate() (Config, error) {
	g, err := ParseGranularity(string(c.Granularity))
	if err != nil {
		return c, err
	}
	l, err := ParseLabelingMode(string(c.Labeling))
	if err != nil {
		return c, err
	}
	if c.HistoryLimit < 0 {
		return c, &ConfigurationError{Field: "history_limit", Reason: "must not be negative", Value: c.HistoryLimit, Index: -1}
	}
	c.Granularity, c.Labeling = g, l
	return c, nil
}

func (c Config) String() string {
	return fmt.Sprintf("granularity=%s labeling=%s", c.Granularity, c.Labeling)
}
