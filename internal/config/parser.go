package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	tferrors "github.com/alexisbeaulieu97/tokenflow/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// DefaultFileNames are tried in order by Discover.
var DefaultFileNames = []string{"tokenflow.yaml", "tokenflow.yml", "tokenflow.toml"}

// ParseConfig loads a project file from disk, applies defaults, validates it,
// and returns the resulting model. Files ending in .toml are decoded as TOML;
// everything else as YAML.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tferrors.NewParseError(path, 0, err)
	}
	return Parse(path, data)
}

// Parse decodes data; path selects the format and labels errors.
func Parse(path string, data []byte) (*Config, error) {
	data, err := normalizeEncoding(data)
	if err != nil {
		return nil, tferrors.NewParseError(path, 0, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, tferrors.NewParseError(path, tomlLine(err), err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, tferrors.NewParseError(path, extractLine(err), err)
	}

	cfg.ApplyDefaults()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalizeEncoding decodes UTF-16 files and drops a UTF-8 byte order mark.
func normalizeEncoding(data []byte) ([]byte, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	return decoded, err
}

// Discover returns the first default project file present in dir.
func Discover(dir string) (string, bool) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
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
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}

func tomlLine(err error) int {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		return perr.Position.Line
	}
	return extractLine(err)
}
