package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	AppLogName        = "app.log"
	AuditLogName      = "audit.log"
)

// Configuration holds the shell's tunables, loaded from config.yaml in the
// configuration directory.
type Configuration struct {
	configDir string
	configFs  afero.Fs

	Motd        string `json:"motd"`
	Prompt      string `json:"prompt"`
	HistoryFile string `json:"history_file"`
	LogLevel    string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// MaxArgs caps the tokens of a single pipeline stage, counting the
	// program name.
	MaxArgs int `json:"max_args" validate:"gt=0"`

	// MaxLineLength caps the accepted line length in bytes.
	MaxLineLength int `json:"max_line_length" validate:"gt=0"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewOsFs()
	}
	return c.configFs
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(filepath.Join(c.configDir, AppLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// OpenAuditLog opens the audit log in an append only state.
func (c *Configuration) OpenAuditLog() (afero.File, error) {
	return c.fs().OpenFile(filepath.Join(c.configDir, AuditLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// HistoryPath returns the location of the line-editor history file, or ""
// if history is disabled.
func (c *Configuration) HistoryPath() string {
	if c.HistoryFile == "" {
		return ""
	}
	return filepath.Join(c.configDir, c.HistoryFile)
}

// Default returns the built-in configuration rooted at the given directory.
func Default(dir string) *Configuration {
	out := defaultConfig()
	out.configDir = dir
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
