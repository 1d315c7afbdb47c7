package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Polling struct {
		EmailSeconds      int `yaml:"email_seconds"`
		CheckpointSeconds int `yaml:"checkpoint_seconds"`
	} `yaml:"polling"`

	Email struct {
		Enabled          bool     `yaml:"enabled"`
		IMAPHost         string   `yaml:"imap_host"`
		IMAPPort         int      `yaml:"imap_port"`
		Username         string   `yaml:"username"`
		Mailbox          string   `yaml:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any"`
	} `yaml:"email"`

	Autofill struct {
		Enabled   bool    `yaml:"enabled"`
		ReqPerSec float64 `yaml:"req_per_sec"`
		Burst     int     `yaml:"burst"`
	} `yaml:"autofill"`

	API struct {
		RatePerSec float64 `yaml:"rate_per_sec"`
		Burst      int     `yaml:"burst"`
	} `yaml:"api"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
