package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrNilConverter = errors.New("nil converter")
	ErrInvalidUTF8  = errors.New("value is not valid utf-8")
)

// Converter turns the stored bytes back into a typed value. The store keeps
// no type information, so the caller picks the converter.
type Converter[T any] func([]byte) (T, error)

// GetAs reads key and applies conv to its bytes. Absent keys report
// found == false. A present value the converter rejects reports
// found == true with the wrapped converter error.
func GetAs[T any](ctx context.Context, c *Cache, key Key, conv Converter[T]) (T, bool, error) {
	var zero T
	if conv == nil {
		return zero, false, ErrNilConverter
	}

	b, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return zero, found, err
	}

	v, err := conv(b)
	if err != nil {
		return zero, true, fmt.Errorf("error converting value of key %s: %w", key, err)
	}

	return v, true, nil
}

func BytesToString(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

func BytesToInt(b []byte) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
}

func BytesToFloat(b []byte) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}
