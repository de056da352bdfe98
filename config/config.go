package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Settings defines the structure for configuration options.
type Settings struct {
	ProcessName  string        `yaml:"processName"`
	SaveGlob     string        `yaml:"saveGlob"`
	PollInterval time.Duration `yaml:"pollInterval"`
	OutputFile   string        `yaml:"outputFile"`
	Verbose      bool          `yaml:"verbose"`
}

// defaultSettings provides default values for settings.
var defaultSettings = Settings{
	ProcessName:  "MonkeyIsland103.exe",
	SaveGlob:     "*.save",
	PollInterval: time.Second,
	OutputFile:   "grub_counter.txt",
	Verbose:      false,
}

// LoadConfig loads settings from a YAML file, creating the file with defaults if it doesn't exist.
func LoadConfig(filePath string) (*Settings, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := createDefaultConfig(filePath); err != nil {
			return nil, err
		}
		log.Printf("Created default config file at %s\n", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := defaultSettings
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// createDefaultConfig creates a config file with default settings.
func createDefaultConfig(filePath string) error {
	data, err := yaml.Marshal(&defaultSettings)
	if err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0644)
}
