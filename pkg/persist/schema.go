package persist

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaCodec wraps a Codec with JSON Schema validation, rejecting a
// document that doesn't conform to Schema before it ever reaches the
// wrapped codec's Decode. Used for on-disk metadata that must be trusted
// across process restarts (cache index, download checkpoints).
type SchemaCodec struct {
	Codec
	Schema string
}

// NewSchemaCodec wraps codec with validation against the given embedded
// JSON schema document.
func NewSchemaCodec(codec Codec, schema string) *SchemaCodec {
	return &SchemaCodec{Codec: codec, Schema: schema}
}

// Decode validates the raw bytes against Schema, then delegates to the
// wrapped codec.
func (c *SchemaCodec) Decode(r io.Reader, state any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(c.Schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		return fmt.Errorf("schema validation failed: %v", msgs)
	}

	return c.Codec.Decode(bytes.NewReader(raw), state)
}
