package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AnswerKind discriminates the payload of an AnswerValue.
type AnswerKind int

const (
	AnswerEmpty AnswerKind = iota
	AnswerBool
	AnswerNumber
	AnswerText
)

// AnswerValue is the tagged union behind a checklist answer. On the wire it
// is a bare JSON boolean, number or string; it is resolved into this
// canonical shape once at decode time.
type AnswerValue struct {
	Kind   AnswerKind
	Bool   bool
	Number float64
	Text   string
}

// BoolAnswer builds a boolean answer.
func BoolAnswer(v bool) AnswerValue { return AnswerValue{Kind: AnswerBool, Bool: v} }

// NumberAnswer builds a numeric answer.
func NumberAnswer(v float64) AnswerValue { return AnswerValue{Kind: AnswerNumber, Number: v} }

// TextAnswer builds a free-text answer.
func TextAnswer(v string) AnswerValue { return AnswerValue{Kind: AnswerText, Text: v} }

// IsEmpty reports whether the answer carries no usable value.
func (a AnswerValue) IsEmpty() bool {
	switch a.Kind {
	case AnswerEmpty:
		return true
	case AnswerText:
		return strings.TrimSpace(a.Text) == ""
	}
	return false
}

// String renders the answer the way the checklist stored it. Numeric answers
// keep their shortest decimal representation so they round-trip exactly.
func (a AnswerValue) String() string {
	switch a.Kind {
	case AnswerBool:
		return strconv.FormatBool(a.Bool)
	case AnswerNumber:
		return strconv.FormatFloat(a.Number, 'f', -1, 64)
	case AnswerText:
		return a.Text
	}
	return ""
}

// MarshalJSON writes the bare JSON value; enum shape is part of the external
// contract with the backing store.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerBool:
		return json.Marshal(a.Bool)
	case AnswerNumber:
		return json.Marshal(a.Number)
	case AnswerText:
		return json.Marshal(a.Text)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a bare boolean, number, string or null.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*a = AnswerValue{}
	case bool:
		*a = BoolAnswer(v)
	case float64:
		*a = NumberAnswer(v)
	case string:
		*a = TextAnswer(v)
	default:
		return fmt.Errorf("unsupported checklist value payload: %s", string(data))
	}
	return nil
}

// ChecklistValue is one answer within a report.
type ChecklistValue struct {
	ItemID  string      `json:"itemId"`
	Value   AnswerValue `json:"value"`
	Comment string      `json:"comment,omitempty"`
	Photos  []string    `json:"photos,omitempty"`
}

// checklistValueWire carries the legacy single-photo field alongside the
// canonical shape. Old clients stored one base64 photo under "photo"; it is
// migrated into Photos eagerly on decode instead of branching at read sites.
type checklistValueWire struct {
	ItemID  string      `json:"itemId"`
	Value   AnswerValue `json:"value"`
	Comment string      `json:"comment,omitempty"`
	Photos  []string    `json:"photos,omitempty"`
	Photo   string      `json:"photo,omitempty"`
}

func (v *ChecklistValue) UnmarshalJSON(data []byte) error {
	var wire checklistValueWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	v.ItemID = wire.ItemID
	v.Value = wire.Value
	v.Comment = wire.Comment
	v.Photos = wire.Photos
	if wire.Photo != "" {
		v.Photos = append([]string{wire.Photo}, v.Photos...)
	}
	return nil
}

// ChecklistValues is the ordered answer list of a report, stored as a JSON
// column by the persistence layer.
type ChecklistValues []ChecklistValue
