package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"earshot/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClient(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateClient() error {
	parsed, err := url.Parse(c.Client.ServerURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("client.server_url must be an absolute URL, got %q", c.Client.ServerURL)
	}
	if _, err := language.Parse(c.Client.Language); err != nil {
		return fmt.Errorf("client.language: %w", err)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if !c.LLM.Enabled {
		return nil
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/earshot/config.toml"
		}
		return fmt.Errorf("llm.api_key is required when llm.enabled is true. Set HF_TOKEN or edit %s (create with 'earshot config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote, got %q", c.Transcription.VADMethod)
	}
	if c.Transcription.Enabled && c.Transcription.VADMethod == "pyannote" && c.Transcription.HuggingFace == "" {
		return errors.New("transcription.hf_token must be set when transcription.vad_method is pyannote")
	}
	if language.ToISO2(c.Transcription.SourceLanguage) == "" {
		return fmt.Errorf("transcription.source_language: unrecognized language %q", c.Transcription.SourceLanguage)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
}
