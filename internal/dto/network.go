package dto

// NetworkFile is the on-disk description of a network. It uses "mapstructure"
// tags so YAML, TOML and JSON documents decode through the same path.
//
// Each entry of Edges is either a table with from, to and capacity keys or a
// [from, to, capacity] triple.
type NetworkFile struct {
	Name    string      `json:"name,omitempty" mapstructure:"name"`
	Nodes   int         `json:"nodes" mapstructure:"nodes"`
	Edges   []any       `json:"edges" mapstructure:"edges"`
	Options OptionsFile `json:"options,omitempty" mapstructure:"options"`
}

// EdgeFile is the table form of an edge.
type EdgeFile struct {
	From     int   `json:"from" mapstructure:"from"`
	To       int   `json:"to" mapstructure:"to"`
	Capacity int64 `json:"capacity" mapstructure:"capacity"`
}

// OptionsFile mirrors the engine options that may be set from a file.
type OptionsFile struct {
	Granularity  string `json:"granularity,omitempty" mapstructure:"granularity"`
	Labeling     string `json:"labeling,omitempty" mapstructure:"labeling"`
	HistoryLimit int    `json:"history_limit,omitempty" mapstructure:"history_limit"`
}
