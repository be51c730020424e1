package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/flowstep/internal/dto"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/view"
)

// Event types written by JSONHandler.
const (
	EventState  = "state"
	EventStep   = "step"
	EventView   = "view"
	EventSystem = "system"
)

// Event is one line of JSONHandler output.
type Event struct {
	Type    string           `json:"type"`
	Session *dto.SessionView `json:"session,omitempty"`
	Step    *dto.StepView    `json:"step,omitempty"`
	View    *view.Graph      `json:"view,omitempty"`
	Message string           `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, sess *domain.Session, res *domain.StepResult) error {
	if res == nil {
		v := dto.FromSession(sess)
		return h.Encoder.Encode(Event{Type: EventState, Session: &v})
	}
	step := dto.FromStep(res, sess)
	return h.Encoder.Encode(Event{Type: EventStep, Step: &step})
}

func (h *JSONHandler) ShowView(ctx context.Context, g view.Graph) error {
	return h.Encoder.Encode(Event{Type: EventView, View: &g})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: EventSystem, Message: msg})
}

// Input reads one line. It accepts a JSON string ("n"), an object
// ({"command":"v network"}) or plain text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return SanitizeInput(val)
	}

	var obj struct {
		Command string `json:"command"`
	}
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &obj); err == nil {
			return SanitizeInput(obj.Command)
		}
	}

	return SanitizeInput(text)
}
