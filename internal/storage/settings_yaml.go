package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lyrica/internal/ui/controls"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	VisibleLines int     `yaml:"visible_lines"`
	FontSize     float64 `yaml:"font_size"`
	Tempo        float64 `yaml:"tempo"`
	LastFile     string  `yaml:"last_file"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (controls.Settings, error) {
	settings := controls.DefaultSettings()
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings controls.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		VisibleLines: settings.VisibleLines,
		FontSize:     settings.FontSize,
		Tempo:        settings.Tempo,
		LastFile:     settings.LastFile,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *controls.Settings, fileData yamlSettings) {
	if fileData.VisibleLines > 0 {
		settings.VisibleLines = fileData.VisibleLines
	}
	if fileData.FontSize > 0 {
		settings.FontSize = fileData.FontSize
	}
	settings.Tempo = fileData.Tempo
	settings.LastFile = fileData.LastFile
	*settings = settings.Normalize()
}
