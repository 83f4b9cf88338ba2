package config

const (
	defaultDataDir              = "~/.local/share/earshot"
	defaultStagingDir           = "~/.local/share/earshot/audio"
	defaultLogDir               = "~/.local/share/earshot/logs"
	defaultAPIBind              = "127.0.0.1:8000"
	defaultMaxUploadMB          = 200
	defaultServerURL            = "http://localhost:8000"
	defaultClientTimeoutSeconds = 30
	defaultLanguage             = "en"
	defaultLLMBaseURL           = "https://router.huggingface.co/v1/chat/completions"
	defaultLLMModel             = "deepseek-ai/DeepSeek-V3.2-Exp:novita"
	defaultLLMTitle             = "earshot"
	defaultLLMTimeoutSeconds    = 60
	defaultWhisperXModel        = "large-v3"
	defaultVADMethod            = "silero"
	defaultSourceLanguage       = "ru"
	defaultTranscriptionTimeout = 1800
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		API: API{
			Bind:        defaultAPIBind,
			MaxUploadMB: defaultMaxUploadMB,
		},
		Client: Client{
			ServerURL:      defaultServerURL,
			TimeoutSeconds: defaultClientTimeoutSeconds,
			Language:       defaultLanguage,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Transcription: Transcription{
			WhisperXModel:  defaultWhisperXModel,
			VADMethod:      defaultVADMethod,
			SourceLanguage: defaultSourceLanguage,
			TimeoutSeconds: defaultTranscriptionTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
