package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/flowstep/internal/dto"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format names a network file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath guesses the format from the file extension. Unknown
// extensions are read as YAML, which also accepts JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return FormatYAML
}

// Definition is a compiled network file, ready for flowstep.New.
type Definition struct {
	Name   string
	Nodes  int
	Edges  []domain.EdgeSpec
	Config domain.Config
}

// Parser is responsible for converting raw bytes into a network definition.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes data into a generic document and then into a NetworkFile.
func (p *Parser) Parse(data []byte, format Format) (*dto.NetworkFile, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML, "":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse network: %w", err)
	}

	if err := checkNetworkNumbers(raw); err != nil {
		return nil, err
	}

	var file dto.NetworkFile
	if err := decode(raw, &file); err != nil {
		return nil, &domain.ConfigurationError{Field: "network", Reason: err.Error(), Value: format, Index: -1}
	}
	return &file, nil
}

// checkNetworkNumbers decodes the top-level integer fields on their own so a
// rejected value is reported under its field name.
func checkNetworkNumbers(raw map[string]any) error {
	if v, ok := raw["nodes"]; ok {
		var nodes int
		if err := decode(v, &nodes); err != nil {
			return &domain.ConfigurationError{Field: "nodes", Reason: err.Error(), Value: v, Index: -1}
		}
	}
	opts, _ := raw["options"].(map[string]any)
	if v, ok := opts["history_limit"]; ok {
		var limit int
		if err := decode(v, &limit); err != nil {
			return &domain.ConfigurationError{Field: "history_limit", Reason: err.Error(), Value: v, Index: -1}
		}
	}
	return nil
}

// Compile turns a NetworkFile into a Definition. Edge shape errors are
// reported with their position; range checks are left to domain.NewNetwork.
func (p *Parser) Compile(file *dto.NetworkFile) (*Definition, error) {
	def := &Definition{
		Name:  file.Name,
		Nodes: file.Nodes,
		Edges: make([]domain.EdgeSpec, 0, len(file.Edges)),
		Config: domain.Config{
			Granularity:  domain.Granularity(file.Options.Granularity),
			Labeling:     domain.LabelingMode(file.Options.Labeling),
			HistoryLimit: file.Options.HistoryLimit,
		},
	}

	var errs []error
	for i, raw := range file.Edges {
		spec, err := compileEdge(raw)
		if err != nil {
			field := "edge"
			var fe *fieldError
			if errors.As(err, &fe) {
				field = fe.field
			}
			errs = append(errs, &domain.ConfigurationError{Field: field, Reason: err.Error(), Value: raw, Index: i})
			continue
		}
		def.Edges = append(def.Edges, spec)
	}
	if len(errs) == 1 {
		return nil, errs[0]
	}
	if len(errs) > 1 {
		return nil, &domain.AggregateError{Errors: errs}
	}

	cfg, err := def.Config.Validate()
	if err != nil {
		return nil, err
	}
	def.Config = cfg

	// Validate the graph now so callers learn about every problem at load time.
	if _, err := domain.NewNetwork(def.Nodes, def.Edges); err != nil {
		return nil, err
	}
	return def, nil
}

// ParseAndCompile runs Parse and Compile.
func (p *Parser) ParseAndCompile(data []byte, format Format) (*Definition, error) {
	file, err := p.Parse(data, format)
	if err != nil {
		return nil, err
	}
	return p.Compile(file)
}

// LoadFile reads and compiles the network file at path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}
	def, err := NewParser().ParseAndCompile(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}

var edgeFields = [3]string{"from", "to", "capacity"}

// fieldError names the edge field a value was rejected for.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string { return e.field + ": " + e.err.Error() }

func (e *fieldError) Unwrap() error { return e.err }

func compileEdge(raw any) (domain.EdgeSpec, error) {
	switch v := raw.(type) {
	case map[string]any:
		for _, name := range edgeFields {
			x, ok := v[name]
			if !ok {
				continue
			}
			var n int64
			if err := decode(x, &n); err != nil {
				return domain.EdgeSpec{}, &fieldError{field: name, err: err}
			}
		}
		var e dto.EdgeFile
		if err := decode(v, &e); err != nil {
			return domain.EdgeSpec{}, err
		}
		return domain.EdgeSpec{From: e.From, To: e.To, Capacity: e.Capacity}, nil
	case []any:
		if len(v) != 3 {
			return domain.EdgeSpec{}, fmt.Errorf("expected [from, to, capacity], got %d values", len(v))
		}
		var triple [3]int64
		for i, name := range edgeFields {
			if err := decode(v[i], &triple[i]); err != nil {
				return domain.EdgeSpec{}, &fieldError{field: name, err: err}
			}
		}
		return domain.EdgeSpec{From: int(triple[0]), To: int(triple[1]), Capacity: triple[2]}, nil
	}
	return domain.EdgeSpec{}, fmt.Errorf("invalid edge definition type: %T", raw)
}

// integerHook rejects numbers an integer field cannot hold exactly. Without
// it mapstructure truncates 2.5 to 2 and wraps 1e30.
func integerHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}

	var n int64
	switch v := data.(type) {
	case float32:
		return integerHook(nil, to, float64(v))
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%v is not an integer", v)
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, fmt.Errorf("%v is out of range", v)
		}
		n = int64(v)
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("%v is out of range", v)
		}
		n = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("%v is out of range", v)
		}
		n = int64(v)
	default:
		return data, nil
	}

	if reflect.Zero(to).OverflowInt(n) {
		return nil, fmt.Errorf("%v is out of range", data)
	}
	return data, nil
}

func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(integerHook),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
