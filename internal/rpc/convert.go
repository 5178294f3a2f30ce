package rpc

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/mission-control/command"
	"github.com/signalsfoundry/mission-control/model"
)

// RecordToStruct encodes a command record as a Struct with the keys id,
// command, status, result and timestamp (RFC 3339).
func RecordToStruct(rec model.CommandRecord) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":        rec.ID,
		"command":   rec.Command,
		"status":    string(rec.Status),
		"result":    rec.Result,
		"timestamp": rec.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

// RecordFromStruct is the inverse of RecordToStruct. Missing keys are left
// at their zero values.
func RecordFromStruct(s *structpb.Struct) (model.CommandRecord, error) {
	var rec model.CommandRecord
	if s == nil {
		return rec, nil
	}
	fields := s.GetFields()
	if v, ok := fields["id"]; ok {
		rec.ID = uint64(v.GetNumberValue())
	}
	rec.Command = fields["command"].GetStringValue()
	rec.Status = model.CommandStatus(fields["status"].GetStringValue())
	rec.Result = fields["result"].GetStringValue()
	if ts := fields["timestamp"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return rec, fmt.Errorf("decode record timestamp: %w", err)
		}
		rec.Timestamp = t
	}
	return rec, nil
}

func suggestionsToList(suggestions []command.Suggestion) (*structpb.ListValue, error) {
	items := make([]any, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, map[string]any{
			"command":     s.Command,
			"description": s.Description,
			"example":     s.Example,
		})
	}
	return structpb.NewList(items)
}

// SuggestionsFromList decodes a Suggest response.
func SuggestionsFromList(list *structpb.ListValue) []command.Suggestion {
	out := make([]command.Suggestion, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		f := v.GetStructValue().GetFields()
		out = append(out, command.Suggestion{
			Command:     f["command"].GetStringValue(),
			Description: f["description"].GetStringValue(),
			Example:     f["example"].GetStringValue(),
		})
	}
	return out
}

// toStruct encodes any JSON-tagged value as a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// request wraps an incoming Struct with typed accessors.
type request struct {
	fields map[string]*structpb.Value
}

func newRequest(s *structpb.Struct) request {
	return request{fields: s.GetFields()}
}

func (r request) string(key string) string {
	return strings.TrimSpace(r.fields[key].GetStringValue())
}

// number returns the numeric field at key, or def when absent. Non-numeric
// and non-finite values are rejected.
func (r request) number(key string, def float64) (float64, error) {
	v, ok := r.fields[key]
	if !ok {
		return def, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: field %q must be a number", errBadRequest, key)
	}
	if math.IsNaN(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, fmt.Errorf("%w: field %q must be finite", errBadRequest, key)
	}
	return n.NumberValue, nil
}

func (r request) integer(key string, def int) (int, error) {
	f, err := r.number(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: field %q must be an integer", errBadRequest, key)
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: field %q out of range", errBadRequest, key)
	}
	return int(f), nil
}

func (r request) has(key string) bool {
	_, ok := r.fields[key]
	return ok
}
