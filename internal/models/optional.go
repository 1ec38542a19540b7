package models

import "encoding/json"

// Optional fields distinguish a key absent from a request body from a
// key explicitly set to null. encoding/json only invokes UnmarshalJSON
// for keys present in the payload, so Set is false exactly when the
// field was omitted.

// OptString is a string field of a partial update
type OptString struct {
	Set   bool
	Value *string
}

func (o *OptString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// OptInt64 is an int64 field of a partial update. A present null or
// zero clears the stored value.
type OptInt64 struct {
	Set   bool
	Value *int64
}

func (o *OptInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}
