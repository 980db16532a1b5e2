package yaml

import (
	"errors"
	"io"

	"github.com/goccy/go-yaml"
)

// Decoder decodes YAML documents, converting goccy errors into [*Error]s
// that carry the failing token.
type Decoder struct {
	d *yaml.Decoder
}

// DecodeOpt configures a [Decoder].
type DecodeOpt func(*decodeOptions)

type decodeOptions struct {
	strict bool
}

// WithStrict rejects duplicate mapping keys. Settings files are decoded
// strictly so that a key repeated by hand is reported instead of silently
// overriding the first one. Note frontmatter is decoded leniently.
func WithStrict(strict bool) DecodeOpt {
	return func(o *decodeOptions) {
		o.strict = strict
	}
}

func NewDecoder(r io.Reader, opts ...DecodeOpt) *Decoder {
	o := &decodeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var yamlOpts []yaml.DecodeOption
	if !o.strict {
		yamlOpts = append(yamlOpts, yaml.AllowDuplicateMapKey())
	}

	return &Decoder{
		d: yaml.NewDecoder(r, yamlOpts...),
	}
}

func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil {
		return nil
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	//nolint:wrapcheck // Return the original error if it's not a [yaml.Error].
	return err
}

// Unmarshal decodes data into v, allowing duplicate keys.
func Unmarshal(data []byte, v any) error {
	err := yaml.UnmarshalWithOptions(data, v, yaml.AllowDuplicateMapKey())
	if err == nil {
		return nil
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:    errors.New(yamlErr.GetMessage()),
			Token:  yamlErr.GetToken(),
			Source: data,
		}
	}

	return err //nolint:wrapcheck // Return the original error.
}
