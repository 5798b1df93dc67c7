package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ReadYAMLFile reads path and decodes it into out. Unknown keys are rejected.
func ReadYAMLFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return gameerrors.NewParseError(path, 0, err)
	}
	return DecodeYAML(path, data, out)
}

// DecodeYAML decodes data into out, reporting failures as parse errors
// attributed to source.
func DecodeYAML(source string, data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return gameerrors.NewParseError(source, 0, fmt.Errorf("document is empty"))
		}
		return gameerrors.NewParseError(source, extractLine(err), err)
	}
	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
