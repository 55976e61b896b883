package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON 自由结构的附加数据，如通知与审计详情
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return marshalJSONColumn(j)
}

func (j *JSON) Scan(value interface{}) error {
	*j = JSON{}
	if value == nil {
		return nil
	}
	return scanJSONColumn(value, j)
}

// marshalJSONColumn 以文本写入，sqlite 与 postgres 都能直接存储
func marshalJSONColumn(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return string(b), nil
}

// scanJSONColumn sqlite 返回 string，postgres 返回 []byte
func scanJSONColumn(value interface{}, dest interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("json column: unsupported type %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
