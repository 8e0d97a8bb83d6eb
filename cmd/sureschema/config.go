package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/i18n"
)

// config holds the defaults read from .sureschema.yaml. Command-line flags
// take precedence.
type config struct {
	RefMethod  string `yaml:"refMethod"`
	OnConflict string `yaml:"onConflict"`
	Format     string `yaml:"format"`
	Language   string `yaml:"language"`
	MaxIssues  int    `yaml:"maxIssues"`
}

func defaultConfig() config {
	return config{RefMethod: "ref-all", OnConflict: "error", Format: "json", Language: "en"}
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string, explicit bool) (config, error) {
	c := defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return c, nil
		}
		return c, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

func (c config) apply() error {
	if c.Language != "" {
		i18n.SetLanguage(c.Language)
	}
	if _, err := parseRefMethod(c.RefMethod); err != nil {
		return err
	}
	_, err := parseConflict(c.OnConflict)
	return err
}

func parseRefMethod(s string) (sureschema.RefMethod, error) {
	for _, m := range []sureschema.RefMethod{sureschema.RefAll, sureschema.RefProvided, sureschema.RefNone} {
		if m.String() == s {
			return m, nil
		}
	}
	return sureschema.RefAll, fmt.Errorf("unknown ref method %q (want ref-all, provided or no-refs)", s)
}

func parseConflict(s string) (sureschema.OnNameConflict, error) {
	switch s {
	case "error", "":
		return sureschema.ConflictError, nil
	case "rename":
		return sureschema.ConflictRename, nil
	}
	return sureschema.ConflictError, fmt.Errorf("unknown conflict policy %q (want error or rename)", s)
}
