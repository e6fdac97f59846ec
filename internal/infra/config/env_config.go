package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a struct
	// that embeds EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a required environment variable is not set and has no default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedVarType is returned when trying to parse an environment variable
	// into an unsupported Go type.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

// EnvConfig is a base type that must be embedded in configuration structs
// to enable environment variable parsing.
type EnvConfig struct {
	namespace string
	file      string
}

// Namespace returns the prefix the config was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

// File returns the YAML file the config was overlaid with, if any.
func (c EnvConfig) File() string {
	return c.file
}

// Option customizes Parse.
type Option func(*EnvConfig)

// WithFile overlays the YAML document at path on top of the defaults before
// environment variables are applied. A missing file is not an error.
func WithFile(path string) Option {
	return func(c *EnvConfig) {
		c.file = path
	}
}

//nolint:varnamelen
func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)

	// Ensure cfg is a pointer to a struct
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem() // Dereference the pointer to get the struct value
	t := v.Type()

	// Iterate over fields to find the embedded EnvConfig
	for i := range t.NumField() {
		field := t.Field(i)
		//nolint:exhaustruct,forcetypeassert
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) {
			if ev := v.Field(i); ev.CanAddr() {
				return ev.Addr().Interface().(*EnvConfig), nil
			}
		}
	}

	return nil, ErrInvalidConfig
}

// Parse loads configuration values into the provided struct.
// The struct must embed EnvConfig and use `env` tags to specify variable names.
// The namespace parameter is used as a prefix for all environment variables.
// Values are resolved in three steps: `default` tags, then the optional YAML
// file (see WithFile), then environment variables.
// Supports string, int, and bool fields. Nested structs are supported.
// Returns an error if parsing fails or required variables are missing.
func Parse(ctx context.Context, cfg any, namespace string, opts ...Option) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	for _, opt := range opts {
		opt(envConfig)
	}

	if err := walk("", cfg, applyDefault); err != nil {
		return err
	}

	if envConfig.file != "" {
		if err := overlayFile(envConfig.file, cfg); err != nil {
			return err
		}
	}

	return walk("", cfg, func(prefix string, field reflect.StructField, value reflect.Value) error {
		return applyEnv(namespace, prefix, field, value)
	})
}

func overlayFile(path string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return nil
}

type fieldFunc func(prefix string, field reflect.StructField, value reflect.Value) error

func walk(prefix string, c any, fn fieldFunc) error {
	t := reflect.TypeOf(c).Elem()
	v := reflect.ValueOf(c).Elem()

	for i := range t.NumField() {
		field := t.Field(i)
		structField := v.Field(i)

		if !field.IsExported() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			envPrefix := field.Tag.Get("envPrefix")

			if err := walk(prefix+envPrefix, structField.Addr().Interface(), fn); err != nil {
				return err
			}

			continue
		}

		if field.Tag.Get("env") == "" {
			continue // Skip field if no env tag is set
		}

		if err := fn(prefix, field, structField); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	return nil
}

func applyDefault(_ string, field reflect.StructField, structField reflect.Value) error {
	defaultValue, ok := field.Tag.Lookup("default")
	if !ok {
		return nil
	}

	return setValue(field, structField, defaultValue)
}

func applyEnv(namespace, prefix string, field reflect.StructField, structField reflect.Value) error {
	envTag := field.Tag.Get("env")
	_, hasDefault := field.Tag.Lookup("default")

	// Iterate over possible namespaces, most specific first
	var (
		nsParts   = strings.Split(namespace, "_")
		envName   string
		envValue  string
		envExists bool
	)

	for i := len(nsParts); i > 0; i-- {
		envName = strings.Join(nsParts[:i], "_")

		if envName != "" {
			envName += "_"
		}

		envName = envName + prefix + envTag
		envValue, envExists = os.LookupEnv(envName)

		if envExists {
			break // Use the found value
		}
	}

	if !envExists {
		if !hasDefault && structField.IsZero() {
			return fmt.Errorf("%w: %s", ErrVarNotSet, prefix+envTag)
		}

		return nil
	}

	return setValue(field, structField, envValue)
}

func setValue(field reflect.StructField, structField reflect.Value, value string) error {
	envTag := field.Tag.Get("env")

	//nolint:exhaustive
	switch field.Type.Kind() {
	case reflect.String:
		structField.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envTag, err)
		}

		structField.SetInt(int64(intValue))
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envTag, err)
		}

		structField.SetBool(boolValue)
	default:
		return fmt.Errorf("%w: %s (%v)", ErrUnsupportedVarType, envTag, field.Type.Kind())
	}

	return nil
}
