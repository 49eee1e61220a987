package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type AnswerKind int

const (
	AnswerText AnswerKind = iota + 1
	AnswerNumber
	AnswerBool
	AnswerList
)

// AnswerValue holds exactly one of a string, a number, a boolean or a list of
// strings.
type AnswerValue struct {
	kind   AnswerKind
	text   string
	number float64
	flag   bool
	list   []string
}

func TextAnswer(s string) AnswerValue       { return AnswerValue{kind: AnswerText, text: s} }
func NumberAnswer(n float64) AnswerValue    { return AnswerValue{kind: AnswerNumber, number: n} }
func BoolAnswer(b bool) AnswerValue         { return AnswerValue{kind: AnswerBool, flag: b} }
func ListAnswer(items []string) AnswerValue { return AnswerValue{kind: AnswerList, list: items} }

func (v AnswerValue) Kind() AnswerKind { return v.kind }

func (v AnswerValue) Text() (string, bool)    { return v.text, v.kind == AnswerText }
func (v AnswerValue) Number() (float64, bool) { return v.number, v.kind == AnswerNumber }
func (v AnswerValue) Bool() (bool, bool)      { return v.flag, v.kind == AnswerBool }
func (v AnswerValue) List() ([]string, bool)  { return v.list, v.kind == AnswerList }

// IsEmpty reports whether the value carries no usable answer.
func (v AnswerValue) IsEmpty() bool {
	switch v.kind {
	case AnswerText:
		return v.text == ""
	case AnswerList:
		return len(v.list) == 0
	case AnswerNumber, AnswerBool:
		return false
	}
	return true
}

// String renders the value for flat exports.
func (v AnswerValue) String() string {
	switch v.kind {
	case AnswerText:
		return v.text
	case AnswerNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case AnswerBool:
		return strconv.FormatBool(v.flag)
	case AnswerList:
		var buf bytes.Buffer
		for i, item := range v.list {
			if i > 0 {
				buf.WriteString("; ")
			}
			buf.WriteString(item)
		}
		return buf.String()
	}
	return ""
}

// ErrUnsupportedAnswer is returned when decoding any other JSON shape, null included.
var ErrUnsupportedAnswer = errors.New("answer must be a string, number, boolean or list of strings")

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = TextAnswer(t)
	case float64:
		*v = NumberAnswer(t)
	case bool:
		*v = BoolAnswer(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return ErrUnsupportedAnswer
			}
			items = append(items, s)
		}
		*v = ListAnswer(items)
	default:
		return ErrUnsupportedAnswer
	}
	return nil
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AnswerText:
		return json.Marshal(v.text)
	case AnswerNumber:
		return json.Marshal(v.number)
	case AnswerBool:
		return json.Marshal(v.flag)
	case AnswerList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return []byte("null"), nil
}

// Answers maps question ids to answer values.
type Answers map[string]AnswerValue

// Validate checks the structural shape of the mapping.
func (a Answers) Validate() error {
	if len(a) == 0 {
		return errors.New("responses must not be empty")
	}
	for key, value := range a {
		if key == "" {
			return errors.New("response keys must not be empty")
		}
		if value.kind == 0 {
			return fmt.Errorf("response %q has no value", key)
		}
	}
	return nil
}
