package api

import (
	"bytes"
	"encoding/json"
)

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// DecodeList accepts either a bare JSON array or a Page. An envelope
// without results, an empty body and null all decode to an empty list.
func DecodeList[T any](data []byte) ([]T, error) {
	items, _, err := DecodePage[T](data)
	return items, err
}

// DecodePage is DecodeList that also reports the envelope's next link.
// next is empty for a bare array and for the last page.
func DecodePage[T any](data []byte) (items []T, next string, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []T{}, "", nil
	}

	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	}

	var page Page[T]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, "", err
	}
	if page.Next != nil {
		next = *page.Next
	}
	if page.Results == nil {
		return []T{}, next, nil
	}
	return page.Results, next, nil
}
