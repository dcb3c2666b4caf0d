package clip

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeList parses a JSON array of clips and validates each entry.
// Malformed input or an invalid clip yields an ErrSerialization error.
func DecodeList(data []byte) ([]Clip, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, Wrap(ErrSerialization, "decode clips", "empty input", nil)
	}
	var clips []Clip
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&clips); err != nil {
		return nil, Wrap(ErrSerialization, "decode clips", "", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, Wrap(ErrSerialization, "decode clips", "trailing data after clip list", err)
	}
	if err := ValidateList(clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// ValidateList checks every clip, reporting the first invalid index.
func ValidateList(clips []Clip) error {
	for i, c := range clips {
		if err := c.Validate(); err != nil {
			return Wrap(ErrSerialization, "validate clips", fmt.Sprintf("clip %d", i), err)
		}
	}
	return nil
}

// EncodeList renders clips as an indented JSON array. A nil slice encodes as [].
func EncodeList(clips []Clip) ([]byte, error) {
	if clips == nil {
		clips = []Clip{}
	}
	data, err := json.MarshalIndent(clips, "", "  ")
	if err != nil {
		return nil, Wrap(ErrSerialization, "encode clips", "", err)
	}
	return data, nil
}
