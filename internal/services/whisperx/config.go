package whisperx

import (
	"strings"

	"earshot/internal/config"
)

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v3").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD and diarization.
	// Diarization is skipped without it.
	HFToken string
	// Language is the spoken language passed to WhisperX.
	Language string
}

// FromConfig converts the application settings into service settings.
func FromConfig(cfg config.Transcription) Config {
	return Config{
		Model:       strings.TrimSpace(cfg.WhisperXModel),
		CUDAEnabled: cfg.CUDAEnabled,
		VADMethod:   strings.TrimSpace(cfg.VADMethod),
		HFToken:     strings.TrimSpace(cfg.HuggingFace),
		Language:    strings.TrimSpace(cfg.SourceLanguage),
	}
}

// WhisperX configuration constants.
const (
	DefaultModel      = "large-v3"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	BeamSize          = "5"
	Temperature       = "0.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// Command names for external tools.
const (
	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)
