/*
Copyright 2025 The clientkit Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package unstructured

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Numbers are decoded into json.Number and re-encoded from their original
// text, so a round trip changes neither field order nor number formatting.

var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

// UnmarshalJSON decodes data, preserving object field order.
func (o *Object) UnmarshalJSON(data []byte) error {
	iter := jsonAPI.BorrowIterator(data)
	defer jsonAPI.ReturnIterator(iter)

	if next := iter.WhatIsNext(); next != jsoniter.ObjectValue {
		return errors.New("not a JSON object")
	}
	decoded, err := readValue(iter)
	if err != nil {
		return err
	}
	*o = *(decoded.(*Object))
	return nil
}

// MarshalJSON encodes the object with its fields in stored order.
func (o *Object) MarshalJSON() ([]byte, error) {
	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)

	writeValue(stream, o)
	if stream.Error != nil {
		return nil, errors.Wrap(stream.Error, "cannot encode object")
	}
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

// UnmarshalJSON decodes data into the unstructured object.
func (u *Unstructured) UnmarshalJSON(data []byte) error {
	obj := NewObject()
	if err := obj.UnmarshalJSON(data); err != nil {
		return err
	}
	u.Object = obj
	return nil
}

// MarshalJSON encodes the unstructured object.
func (u *Unstructured) MarshalJSON() ([]byte, error) {
	if u.Object == nil {
		return []byte("{}"), nil
	}
	return u.Object.MarshalJSON()
}

func readValue(iter *jsoniter.Iterator) (any, error) {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil, iter.Error
	case jsoniter.BoolValue:
		return iter.ReadBool(), iter.Error
	case jsoniter.NumberValue:
		return iter.ReadNumber(), iter.Error
	case jsoniter.StringValue:
		return iter.ReadString(), iter.Error
	case jsoniter.ArrayValue:
		arr := []any{}
		var elemErr error
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			v, err := readValue(it)
			if err != nil {
				elemErr = err
				return false
			}
			arr = append(arr, v)
			return true
		})
		if elemErr != nil {
			return nil, elemErr
		}
		return arr, iter.Error
	case jsoniter.ObjectValue:
		obj := NewObject()
		var fieldErr error
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			v, err := readValue(it)
			if err != nil {
				fieldErr = err
				return false
			}
			obj.fields = append(obj.fields, Field{Key: key, Value: v})
			return true
		})
		if fieldErr != nil {
			return nil, fieldErr
		}
		return obj, iter.Error
	default:
		if iter.Error != nil {
			return nil, iter.Error
		}
		return nil, errors.New("invalid JSON value")
	}
}

func writeValue(stream *jsoniter.Stream, v any) {
	switch v := v.(type) {
	case nil:
		stream.WriteNil()
	case bool:
		stream.WriteBool(v)
	case json.Number:
		stream.WriteRaw(string(v))
	case string:
		stream.WriteString(v)
	case int:
		stream.WriteInt(v)
	case int64:
		stream.WriteInt64(v)
	case float64:
		stream.WriteFloat64(v)
	case []any:
		stream.WriteArrayStart()
		for i, e := range v {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, e)
		}
		stream.WriteArrayEnd()
	case *Object:
		stream.WriteObjectStart()
		for i, f := range v.Fields() {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(f.Key)
			writeValue(stream, f.Value)
		}
		stream.WriteObjectEnd()
	default:
		stream.Error = errors.Errorf("unsupported value type %T", v)
	}
}
