package curriculum

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MetadataDecoder fills chapter fields from a front matter block.
type MetadataDecoder interface {
	DecodeMetadata(meta string, ch *Chapter) error
}

// LineDecoder decodes the authoring subset line by line:
// "key: value" scalars and "key:" followed by "- item" lists.
// It never fails; unknown keys and unparseable numbers are ignored.
type LineDecoder struct{}

func (LineDecoder) DecodeMetadata(meta string, ch *Chapter) error {
	listKey := ""
	for _, line := range strings.Split(meta, "\n") {
		line = strings.TrimSpace(line)

		if item, ok := strings.CutPrefix(line, "- "); ok && listKey != "" {
			appendListField(ch, listKey, unquote(item))
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok || key == "" {
			continue
		}
		key = strings.TrimSpace(key)
		value = unquote(value)

		if value == "" {
			listKey = key
			continue
		}
		listKey = ""
		setScalarField(ch, key, value)
	}
	return nil
}

func setScalarField(ch *Chapter, key, value string) {
	switch folder.String(key) {
	case "id":
		if n, err := strconv.Atoi(value); err == nil {
			ch.ID = n
		}
	case "number":
		if n, err := strconv.Atoi(value); err == nil {
			ch.Number = n
		}
	case "title":
		ch.Title = value
	case "description":
		ch.Description = value
	case "route":
		ch.Route = value
	case "category":
		ch.Category = ParseCategory(value)
	}
}

func appendListField(ch *Chapter, key, value string) {
	switch folder.String(key) {
	case "topics":
		ch.Topics = append(ch.Topics, value)
	case "keypoints":
		ch.KeyPoints = append(ch.KeyPoints, value)
	}
}

// unquote trims whitespace and surrounding double quotes.
func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// YAMLDecoder decodes the front matter as a YAML document.
// Unlike LineDecoder it is strict: malformed YAML or a non-numeric id fails the chapter.
type YAMLDecoder struct{}

type yamlFrontMatter struct {
	ID          int      `yaml:"id"`
	Number      int      `yaml:"number"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Route       string   `yaml:"route"`
	Category    string   `yaml:"category"`
	Topics      []string `yaml:"topics"`
	KeyPoints   []string `yaml:"keypoints"`
}

func (YAMLDecoder) DecodeMetadata(meta string, ch *Chapter) error {
	var fm yamlFrontMatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return fmt.Errorf("decoding front matter: %w", err)
	}

	ch.ID = fm.ID
	ch.Number = fm.Number
	ch.Title = strings.TrimSpace(fm.Title)
	ch.Description = strings.TrimSpace(fm.Description)
	ch.Route = strings.TrimSpace(fm.Route)
	ch.Category = ParseCategory(strings.TrimSpace(fm.Category))
	ch.Topics = append(ch.Topics, fm.Topics...)
	ch.KeyPoints = append(ch.KeyPoints, fm.KeyPoints...)
	return nil
}
