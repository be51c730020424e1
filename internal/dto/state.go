package dto

import (
	"slices"
	"time"

	"github.com/aretw0/flowstep/pkg/domain"
)

// EdgeView is an edge as seen by API clients.
type EdgeView struct {
	ID       string `json:"id"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	Flow     int64  `json:"flow"`
	Capacity int64  `json:"capacity"`
}

// CutView is the minimum cut reported once a run has terminated.
type CutView struct {
	Nodes    []int `json:"nodes"`
	Capacity int64 `json:"capacity"`
}

// SessionView is the wire representation of a stored session shared by the
// HTTP and MCP adapters. History is summarized by its depth.
type SessionView struct {
	ID            string        `json:"id"`
	Config        domain.Config `json:"config"`
	NumberOfNodes int           `json:"number_of_nodes"`
	StepCounter   int           `json:"step_counter"`
	Labeled       []int         `json:"labeled"`
	Scanned       []int         `json:"scanned"`
	Predecessor   map[int]int   `json:"predecessor"`
	CurrentNode   *int          `json:"current_node,omitempty"`
	Intermediate  bool          `json:"intermediate"`
	Terminated    bool          `json:"terminated"`
	FlowValue     int64         `json:"flow_value"`
	Edges         []EdgeView    `json:"edges"`
	HistoryDepth  int           `json:"history_depth"`
	MinCut        *CutView      `json:"min_cut,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// FromSession builds a SessionView. The result shares no memory with sess.
func FromSession(sess *domain.Session) SessionView {
	snap := sess.Current.Clone()
	st, net := &snap.State, &snap.Network

	v := SessionView{
		ID:            sess.ID,
		Config:        sess.Config,
		NumberOfNodes: net.NumberOfNodes,
		StepCounter:   st.StepCounter,
		Labeled:       nonNil(st.Labeled),
		Scanned:       nonNil(st.Scanned),
		Predecessor:   st.Predecessor,
		CurrentNode:   st.CurrentNode,
		Intermediate:  st.Intermediate,
		Terminated:    st.Terminated,
		FlowValue:     net.FlowValue(),
		Edges:         make([]EdgeView, len(net.Edges)),
		HistoryDepth:  len(sess.History),
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}
	if v.Predecessor == nil {
		v.Predecessor = map[int]int{}
	}
	for i, e := range net.Edges {
		v.Edges[i] = EdgeView{ID: e.Key(), From: e.From, To: e.To, Flow: e.Flow, Capacity: e.Capacity}
	}
	if st.Terminated {
		v.MinCut = &CutView{Nodes: slices.Clone(v.Labeled), Capacity: net.CutCapacity(st.Labeled)}
	}
	return v
}

// StepView reports one step together with the resulting session.
type StepView struct {
	Kind    domain.StepKind `json:"kind"`
	Node    *int            `json:"node,omitempty"`
	Labeled []int           `json:"labeled,omitempty"`
	Path    []int           `json:"path,omitempty"`
	Amount  int64           `json:"amount,omitempty"`
	Session SessionView     `json:"session"`
}

// FromStep builds a StepView.
func FromStep(res *domain.StepResult, sess *domain.Session) StepView {
	return StepView{
		Kind:    res.Kind,
		Node:    res.Node,
		Labeled: res.Labeled,
		Path:    res.Path,
		Amount:  res.Amount,
		Session: FromSession(sess),
	}
}

// CreateSessionRequest is the body accepted by session creation endpoints.
// Edges take the same shapes as a network file.
type CreateSessionRequest struct {
	ID string `json:"id,omitempty"`
	NetworkFile
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return slices.Clone(s)
}
