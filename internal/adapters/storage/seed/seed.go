// Package seed loads the initial student and activity roster.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"activityhub/internal/domain/activity"
	"activityhub/internal/domain/student"
)

//go:embed default.yaml
var defaultYAML []byte

// Fixtures is the roster inserted into an empty store.
type Fixtures struct {
	Students   []student.Student
	Activities []activity.Activity
}

type fileFormat struct {
	Students []struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"students"`
	Activities []struct {
		Name        string `yaml:"name"`
		Type        string `yaml:"type"`
		Subcategory string `yaml:"subcategory"`
		Date        string `yaml:"date"`
	} `yaml:"activities"`
}

// Default returns the embedded demo roster.
func Default() Fixtures {
	f, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded seed is invalid: %v", err))
	}
	return f
}

// Load reads fixtures from path, or returns Default when path is empty.
// PRE: none
// POST: every returned record passes validation
func Load(path string) (Fixtures, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return Fixtures{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML fixtures and validates each record. Unknown keys are
// rejected so typos do not silently drop data.
func Parse(data []byte) (Fixtures, error) {
	var raw fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Fixtures{}, fmt.Errorf("decode: %w", err)
	}

	var f Fixtures
	for i, s := range raw.Students {
		st := student.Student{Name: s.Name, Email: s.Email, Password: s.Password}
		if err := st.Validate(); err != nil {
			return Fixtures{}, fmt.Errorf("students[%d]: %w", i, err)
		}
		f.Students = append(f.Students, st)
	}
	for i, a := range raw.Activities {
		act := activity.Activity{Name: a.Name, Type: a.Type, Subcategory: a.Subcategory, Date: a.Date}
		act.Normalize()
		if err := act.Validate(); err != nil {
			return Fixtures{}, fmt.Errorf("activities[%d]: %w", i, err)
		}
		f.Activities = append(f.Activities, act)
	}
	return f, nil
}
