package cmd

import (
	"fmt"
	"slices"
	"strings"
)

// DocumentFormat is the serialization used when exporting documents such as the OpenAPI schema.
type DocumentFormat string

type DocumentFormats []DocumentFormat

const (
	FormatJSON DocumentFormat = "json"
	FormatYAML DocumentFormat = "yaml"
)

func AllowedDocumentFormats() DocumentFormats {
	formats := []DocumentFormat{
		FormatYAML,
		FormatJSON,
	}

	slices.Sort(formats)

	return formats
}

// String implements fmt.Stringer for a collection of formats, converting them to a comma separated string.
func (f *DocumentFormats) String() string {
	dfs := *f
	out := make([]string, len(dfs))
	for i := range dfs {
		out[i] = dfs[i].String()
	}
	return strings.Join(out, ", ")
}

// String implements fmt.Stringer, and is required by Cobra as part of implementing flag.Value.
func (f *DocumentFormat) String() string {
	return strings.ToLower(string(*f))
}

// Extension returns the file extension (without the dot) for the format.
func (f *DocumentFormat) Extension() string {
	return f.String()
}

// Set is used by Cobra to set the format value from a string.
func (f *DocumentFormat) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	allowed := AllowedDocumentFormats()

	for _, a := range allowed {
		if string(a) == v {
			*f = DocumentFormat(v)
			return nil
		}
	}

	return fmt.Errorf("invalid format '%s', must be one of %v", v, allowed.String())
}

// Type is used by Cobra to get the 'type' of a format for display purposes.
func (f *DocumentFormat) Type() string {
	return "format"
}
