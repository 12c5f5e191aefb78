// Package export produces the portable catalog document used by authoring
// tools and the dashboard's download endpoint.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itchyny/json2yaml"
	"github.com/samber/lo"
	"github.com/tidwall/sjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
)

// Version is the export document format version.
const Version = 1

//go:embed schema.json
var schemaJSON []byte

var schema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("export: invalid embedded schema: %v", err))
	}
	return s
}()

// Document is the export layout. GeneratedAt is stamped separately by Build.
type Document struct {
	Meta     Meta                 `json:"meta"`
	Chapters []curriculum.Chapter `json:"chapters"`
}

type Meta struct {
	Version int `json:"version"`
	Count   int `json:"count"`
}

// Build returns the indented JSON export of chapters stamped with now.
func Build(chapters []curriculum.Chapter, now time.Time) ([]byte, error) {
	doc := Document{
		Meta:     Meta{Version: Version, Count: len(chapters)},
		Chapters: lo.Map(chapters, func(ch curriculum.Chapter, _ int) curriculum.Chapter { return normalize(ch) }),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	data, err = sjson.SetBytes(data, "meta.generated_at", now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("stamp export: %w", err)
	}
	return data, nil
}

// ToYAML converts a JSON export to YAML.
func ToYAML(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json2yaml.Convert(&buf, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("convert export to yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "export does not match schema: " + strings.Join(e.Problems, "; ")
}

// Validate checks a JSON export against the embedded schema.
// Schema violations are returned as *ValidationError.
func Validate(data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate export: %w", err)
	}
	if result.Valid() {
		return nil
	}
	return &ValidationError{
		Problems: lo.Map(result.Errors(), func(e gojsonschema.ResultError, _ int) string { return e.String() }),
	}
}

// IsValidationError reports whether err carries schema violations.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// normalize replaces nil slices so the export never contains nulls where
// arrays are expected.
func normalize(ch curriculum.Chapter) curriculum.Chapter {
	if ch.Topics == nil {
		ch.Topics = []string{}
	}
	if ch.KeyPoints == nil {
		ch.KeyPoints = []string{}
	}
	if ch.Steps == nil {
		ch.Steps = []curriculum.Step{}
	}
	if ch.Quiz != nil {
		q := *ch.Quiz
		q.Questions = lo.Map(q.Questions, func(qq curriculum.QuizQuestion, _ int) curriculum.QuizQuestion {
			if qq.Options == nil {
				qq.Options = []string{}
			}
			return qq
		})
		ch.Quiz = &q
	}
	return ch
}
