// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"io"
	"mime"

	"github.com/ugorji/go/codec"
)

var jsonHandle = &codec.JsonHandle{}

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		// We could also consider http.DetectContentType()
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}

	// Promote to the canonical type
	switch mediaType {
	case "text/json", JSONMediaType:
		mediaType = JSONMediaType

	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}

	decoder := codec.NewDecoder(r, jsonHandle)
	return decoder.Decode(out)
}

// Encode writes the JSON encoding of a restdata object to a writer,
// such as an HTTP request or response.
func Encode(w io.Writer, obj interface{}) error {
	encoder := codec.NewEncoder(w, jsonHandle)
	return encoder.Encode(obj)
}
