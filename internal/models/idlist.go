package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IDList is a list of person ids. It decodes from a JSON integer array, a
// comma-joined string such as "1, 2,3", or null.
type IDList []int64

// UnmarshalJSON implements json.Unmarshaler.
func (l *IDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		ids, err := ParseIDList(raw)
		if err != nil {
			return err
		}
		*l = ids
		return nil
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*l = ids
	return nil
}

// ParseIDList parses a comma-joined id list. Blank entries are skipped.
func ParseIDList(raw string) (IDList, error) {
	var ids IDList
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid person id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
