package shared

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Read the contents of file into string value
func ReadFileValueString(file string, val *string) error {
	fileContents, err := ReadFile(file)
	if err != nil {
		return err
	}

	*val = strings.TrimSuffix(fileContents, "\n")
	return err
}

func ReadFile(file string) (string, error) {
	filePath := BuildFullFilePath(file)

	// If no file is provided then we don't try to read it
	if filePath == "" {
		return "", nil
	}

	buf, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func BuildFullFilePath(filename string) string {
	// If the value is in quotes, unquote it
	unquotedFile, err := strconv.Unquote(filename)
	if err != nil {
		// values without quotes will raise an error, ignore it.
		unquotedFile = filename
	}
	return unquotedFile
}

// ReadYamlFile reads a YAML file located at `filename` and unmarshals it
// into the `out` argument
func ReadYamlFile(filename string, out interface{}) error {
	fileContents, err := ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal([]byte(fileContents), out)
}
