package whisperx

import "context"

// normalizeArgs builds the ffmpeg arguments that convert any uploaded audio
// into the mono 16kHz WAV WhisperX expects.
func normalizeArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// NormalizeAudio converts source into a mono 16kHz WAV file at dest.
func (s *Service) NormalizeAudio(ctx context.Context, source, dest string) error {
	return s.run(ctx, s.ffmpegBinary, normalizeArgs(source, dest)...)
}
