package transport

import "encoding/json"

// OptionalString distinguishes "key absent" from "key present with null or
// empty". Absent keys leave the stored value untouched; present keys
// overwrite, including with empty.
type OptionalString struct {
	Value *string
	Set   bool
}

func (o OptionalString) IsZero() bool {
	return !o.Set
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}

// Overwrite returns the value to write when the key was present: the supplied
// string, or empty when it was null.
func (o OptionalString) Overwrite() *string {
	if !o.Set {
		return nil
	}
	if o.Value == nil {
		empty := ""
		return &empty
	}
	return o.Value
}
