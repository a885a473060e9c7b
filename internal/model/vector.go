package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Vector is a fixed-length text embedding stored as a JSON array in the
// database. A nil Vector means the embedding could not be generated.
type Vector []float32

// Value implements driver.Valuer so GORM can persist the vector as jsonb.
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner for reading the vector back from jsonb.
func (v *Vector) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}

	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("unsupported vector column type %T", src)
	}

	return json.Unmarshal(data, v)
}

// GormDataType tells GORM which column type to migrate for Vector fields.
func (Vector) GormDataType() string {
	return "jsonb"
}
