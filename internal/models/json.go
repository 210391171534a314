package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a string slice stored as a JSON array column.
type StringList []string

func (a StringList) Value() (driver.Value, error) {
	return jsonValue(a)
}

func (a *StringList) Scan(value interface{}) error {
	return jsonScan(value, a)
}

// Ingredients keeps recipe ingredients in order.
type Ingredients []Ingredient

func (a Ingredients) Value() (driver.Value, error) {
	return jsonValue(a)
}

func (a *Ingredients) Scan(value interface{}) error {
	return jsonScan(value, a)
}

// Instructions keeps recipe steps in order.
type Instructions []Instruction

func (a Instructions) Value() (driver.Value, error) {
	return jsonValue(a)
}

func (a *Instructions) Scan(value interface{}) error {
	return jsonScan(value, a)
}

func jsonValue[T any](items []T) (driver.Value, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(value interface{}, dst interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		raw = []byte("[]")
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	if len(raw) == 0 {
		raw = []byte("[]")
	}
	return json.Unmarshal(raw, dst)
}
