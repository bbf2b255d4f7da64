package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// IDList 以 JSON 数组形式存储在 text 列中的 ID 集合
type IDList []uint

// Value 实现 driver.Valuer 接口，空集合写为 "[]"
func (l IDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口
func (l *IDList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = IDList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported id list type %T", value)
	}
	if len(raw) == 0 {
		*l = IDList{}
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return err
	}
	*l = ids
	return nil
}

// Normalize 去重、去零并升序
func (l IDList) Normalize() IDList {
	seen := make(map[uint]struct{}, len(l))
	out := make(IDList, 0, len(l))
	for _, id := range l {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
