// Package whisperx transcribes uploaded audio samples with WhisperX.
//
// Uploads are first normalised to mono 16kHz WAV with ffmpeg, then passed to
// `uvx whisperx` with JSON output. When a Hugging Face token is configured the
// run also diarizes, and the SPEAKER_NN labels become "Speaker N" (one-based).
// Segment times are rendered m:ss.
//
// Configuration options (model, CUDA, VAD method, language) are passed via
// Config. Tests inject a CommandRunner instead of executing binaries.
package whisperx
