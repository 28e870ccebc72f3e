package bpmn

import (
	"fmt"
	"strings"
)

// Kind is the closed set of BPMN element types the layout engine understands.
type Kind int

const (
	KindUnknown Kind = iota

	// Events
	StartEvent
	EndEvent
	IntermediateCatchEvent
	IntermediateThrowEvent
	BoundaryEvent

	// Activities
	Task
	UserTask
	ServiceTask
	ScriptTask
	ManualTask
	BusinessRuleTask
	SendTask
	ReceiveTask
	CallActivity
	SubProcess

	// Gateways
	ExclusiveGateway
	ParallelGateway
	InclusiveGateway
	EventBasedGateway
	ComplexGateway

	// Containers
	Participant
	Lane

	// Artifacts and data
	DataObjectReference
	DataStoreReference
	TextAnnotation
	Group

	// Connections
	SequenceFlow
	MessageFlow
	Association
	DataInputAssociation
	DataOutputAssociation
)

// Category groups kinds for exhaustive handling in layout passes.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryEvent
	CategoryActivity
	CategoryGateway
	CategoryContainer
	CategoryArtifact
	CategoryConnection
)

var kindNames = map[Kind]string{
	StartEvent:             "bpmn:StartEvent",
	EndEvent:               "bpmn:EndEvent",
	IntermediateCatchEvent: "bpmn:IntermediateCatchEvent",
	IntermediateThrowEvent: "bpmn:IntermediateThrowEvent",
	BoundaryEvent:          "bpmn:BoundaryEvent",
	Task:                   "bpmn:Task",
	UserTask:               "bpmn:UserTask",
	ServiceTask:            "bpmn:ServiceTask",
	ScriptTask:             "bpmn:ScriptTask",
	ManualTask:             "bpmn:ManualTask",
	BusinessRuleTask:       "bpmn:BusinessRuleTask",
	SendTask:               "bpmn:SendTask",
	ReceiveTask:            "bpmn:ReceiveTask",
	CallActivity:           "bpmn:CallActivity",
	SubProcess:             "bpmn:SubProcess",
	ExclusiveGateway:       "bpmn:ExclusiveGateway",
	ParallelGateway:        "bpmn:ParallelGateway",
	InclusiveGateway:       "bpmn:InclusiveGateway",
	EventBasedGateway:      "bpmn:EventBasedGateway",
	ComplexGateway:         "bpmn:ComplexGateway",
	Participant:            "bpmn:Participant",
	Lane:                   "bpmn:Lane",
	DataObjectReference:    "bpmn:DataObjectReference",
	DataStoreReference:     "bpmn:DataStoreReference",
	TextAnnotation:         "bpmn:TextAnnotation",
	Group:                  "bpmn:Group",
	SequenceFlow:           "bpmn:SequenceFlow",
	MessageFlow:            "bpmn:MessageFlow",
	Association:            "bpmn:Association",
	DataInputAssociation:   "bpmn:DataInputAssociation",
	DataOutputAssociation:  "bpmn:DataOutputAssociation",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames)*2)
	for k, n := range kindNames {
		m[strings.ToLower(n)] = k
		m[strings.ToLower(strings.TrimPrefix(n, "bpmn:"))] = k
	}
	return m
}()

// String returns the BPMN type tag, e.g. "bpmn:UserTask".
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind accepts a type tag with or without the "bpmn:" prefix,
// case-insensitively.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("unknown element type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Category classifies k.
func (k Kind) Category() Category {
	switch k {
	case StartEvent, EndEvent, IntermediateCatchEvent, IntermediateThrowEvent, BoundaryEvent:
		return CategoryEvent
	case Task, UserTask, ServiceTask, ScriptTask, ManualTask, BusinessRuleTask,
		SendTask, ReceiveTask, CallActivity, SubProcess:
		return CategoryActivity
	case ExclusiveGateway, ParallelGateway, InclusiveGateway, EventBasedGateway, ComplexGateway:
		return CategoryGateway
	case Participant, Lane:
		return CategoryContainer
	case DataObjectReference, DataStoreReference, TextAnnotation, Group:
		return CategoryArtifact
	case SequenceFlow, MessageFlow, Association, DataInputAssociation, DataOutputAssociation:
		return CategoryConnection
	case KindUnknown:
		return CategoryUnknown
	}
	return CategoryUnknown
}

// IsFlowNode reports whether k takes part in sequence flow.
func (k Kind) IsFlowNode() bool {
	switch k.Category() {
	case CategoryEvent, CategoryActivity, CategoryGateway:
		return true
	}
	return false
}

// IsConnection reports whether k is a flow or association.
func (k Kind) IsConnection() bool { return k.Category() == CategoryConnection }

// IsGateway reports whether k is any gateway kind.
func (k Kind) IsGateway() bool { return k.Category() == CategoryGateway }

// IsEvent reports whether k is any event kind.
func (k Kind) IsEvent() bool { return k.Category() == CategoryEvent }

// DefaultSize returns the width and height bpmn-js uses for a freshly
// created shape of kind k.
func DefaultSize(k Kind, expanded bool) (w, h float64) {
	switch k.Category() {
	case CategoryEvent:
		return 36, 36
	case CategoryGateway:
		return 50, 50
	case CategoryActivity:
		if k == SubProcess && expanded {
			return 350, 200
		}
		return 100, 80
	case CategoryContainer:
		if k == Lane {
			return 570, 125
		}
		return 600, 250
	case CategoryArtifact:
		switch k {
		case DataObjectReference:
			return 36, 50
		case DataStoreReference:
			return 50, 50
		case TextAnnotation:
			return 100, 30
		case Group:
			return 300, 300
		}
	case CategoryConnection, CategoryUnknown:
	}
	return 100, 80
}
