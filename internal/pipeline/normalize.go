package pipeline

import (
	"bytes"
	"encoding/json"

	"github.com/jorge-barreto/blogflow/internal/common"
)

// Normalize unwraps a response body into the single record it carries.
// The endpoints disagree on shape, so the order is fixed:
//
//  1. a JSON array yields its first element;
//  2. an object with a "data" array yields that array's first element, and
//     one further "data" or object-valued "clusters" wrapper inside it is
//     peeled off;
//  3. any other object is the record itself.
//
// Everything else (null, scalars, empty arrays) is a malformed response.
func Normalize(stage Stage, body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, common.Malformed(string(stage), "empty body")
	}

	switch body[0] {
	case '[':
		first, err := firstElement(stage, body)
		if err != nil {
			return nil, err
		}
		return requireObject(stage, first)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, common.Malformed(string(stage), "decode body: %v", err)
		}
		data, ok := obj["data"]
		if !ok || !isArray(data) {
			return json.RawMessage(body), nil
		}
		first, err := firstElement(stage, data)
		if err != nil {
			return nil, err
		}
		rec, err := requireObject(stage, first)
		if err != nil {
			return nil, err
		}
		return unwrapNested(stage, rec)
	}
	return nil, common.Malformed(string(stage), "unrecognized response shape")
}

func unwrapNested(stage Stage, rec json.RawMessage) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(rec, &obj); err != nil {
		return nil, common.Malformed(string(stage), "decode record: %v", err)
	}
	if inner, ok := obj["data"]; ok {
		if isArray(inner) {
			first, err := firstElement(stage, inner)
			if err != nil {
				return nil, err
			}
			return requireObject(stage, first)
		}
		if isObject(inner) {
			return inner, nil
		}
	}
	if inner, ok := obj["clusters"]; ok && isObject(inner) {
		return inner, nil
	}
	return rec, nil
}

func firstElement(stage Stage, raw json.RawMessage) (json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, common.Malformed(string(stage), "decode array: %v", err)
	}
	if len(arr) == 0 {
		return nil, common.Malformed(string(stage), "empty array")
	}
	return arr[0], nil
}

func requireObject(stage Stage, raw json.RawMessage) (json.RawMessage, error) {
	if !isObject(raw) {
		return nil, common.Malformed(string(stage), "record is not an object")
	}
	return raw, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
