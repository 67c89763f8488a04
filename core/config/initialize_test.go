package config

import (
	"io/ioutil"
	"log"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	fsys := afero.NewMemMapFs()
	logger := log.New(ioutil.Discard, "", 0)

	cfg, err := initialize(fsys, ".", logger)
	if err != nil {
		t.Fatal(err)
	}
	assert.Nil(t, cfg.Validate())

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenAuditLog", func(t *testing.T) {
		fd, err := cfg.OpenAuditLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("HistoryPath", func(t *testing.T) {
		assert.NotEmpty(t, cfg.HistoryPath())
	})
}

func TestInitializeKeepsExisting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	logger := log.New(ioutil.Discard, "", 0)

	custom := []byte("motd: hello\nprompt: '$ '\nhistory_file: ''\nlog_level: debug\nmax_args: 3\nmax_line_length: 80\n")
	if err := afero.WriteFile(fsys, ConfigurationName, custom, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := initialize(fsys, ".", logger)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "hello", cfg.Motd)
	assert.Equal(t, 3, cfg.MaxArgs)
	assert.Equal(t, "", cfg.HistoryPath(), "empty history_file disables history")
}

func TestLoadMissing(t *testing.T) {
	_, err := load(afero.NewMemMapFs(), ".")
	assert.NotNil(t, err)
}
