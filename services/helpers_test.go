package services

import (
	"bytes"
	"errors"
)

const epsilon = 1e-9

var errRollback = errors.New("rollback")

// bytesReader wraps a byte slice for excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
