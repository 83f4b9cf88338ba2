package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"earshot/internal/contextview"
	"earshot/internal/logging"
	"earshot/internal/services"
	"earshot/internal/store"
)

// Transcriber produces utterances for an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, source, workDir string) ([]contextview.Utterance, error)
}

// Translator converts "Speaker X: text" lines from Russian to English.
type Translator interface {
	Translate(ctx context.Context, russianText string) (string, error)
}

// Summarizer condenses transcript text into a short description.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Store is the persistence surface the pipeline needs.
type Store interface {
	Context(ctx context.Context, id int64) (*store.Context, error)
	GetContext(ctx context.Context, id int64) (*contextview.Payload, error)
	EnsureSpeaker(ctx context.Context, contextID int64, name, description string) (contextview.Speaker, bool, error)
	AddAudioSample(ctx context.Context, contextID int64, sample store.AudioSample, utterances []contextview.Utterance) (*store.AudioSample, error)
	UpdateDescription(ctx context.Context, id int64, description string) error
}

// Warning event types reported on Result and in logs.
const (
	EventTranscriptionFailed = "transcription_failed"
	EventTranslationFailed   = "translation_failed"
	EventTranslationMismatch = "translation_line_mismatch"
	EventSummaryFailed       = "summary_failed"
	EventSpeakerFailed       = "speaker_upsert_failed"
)

// Warning describes a degraded step.
type Warning struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// Result reports what an ingest run stored.
type Result struct {
	Audio       *store.AudioSample `json:"audio"`
	Utterances  int                `json:"utterances"`
	NewSpeakers []string           `json:"new_speakers"`
	Translated  bool               `json:"translated"`
	Summarized  bool               `json:"summarized"`
	Warnings    []Warning          `json:"warnings"`
}

// Pipeline wires storage and the optional external services.
type Pipeline struct {
	store       Store
	stagingDir  string
	transcriber Transcriber
	translator  Translator
	summarizer  Summarizer
	logger      *slog.Logger
	newID       func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithTranscriber enables transcription.
func WithTranscriber(t Transcriber) Option {
	return func(p *Pipeline) { p.transcriber = t }
}

// WithTranslator enables English translation.
func WithTranslator(t Translator) Option {
	return func(p *Pipeline) { p.translator = t }
}

// WithSummarizer enables description regeneration.
func WithSummarizer(s Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New builds a pipeline writing uploads below stagingDir.
func New(st Store, stagingDir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      st,
		stagingDir: stagingDir,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "ingest")
	return p
}

// Ingest stores the uploaded audio for contextID and enriches it.
func (p *Pipeline) Ingest(ctx context.Context, contextID int64, filename string, r io.Reader) (*Result, error) {
	ctx = logging.WithContextID(ctx, contextID)
	logger := logging.WithContext(ctx, p.logger)

	if r == nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "upload", "audio body required", nil)
	}
	if _, err := p.store.Context(ctx, contextID); err != nil {
		return nil, err
	}

	name := cleanFilename(filename)
	id := p.newID()
	dir := filepath.Join(p.stagingDir, strconv.FormatInt(contextID, 10))
	path, size, err := saveUpload(dir, id+"_"+name, r)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "save upload", name, err)
	}
	logger.Info("audio stored", logging.String("file", path), logging.Int64("bytes", size))

	result := &Result{NewSpeakers: make([]string, 0), Warnings: make([]Warning, 0)}
	warn := func(event, msg string, err error) {
		result.Warnings = append(result.Warnings, Warning{Event: event, Message: fmt.Sprintf("%s: %v", msg, err)})
		logging.WarnWithContext(logger, msg, event, logging.Error(err))
	}

	var utterances []contextview.Utterance
	if p.transcriber != nil {
		workDir := filepath.Join(dir, id)
		utterances, err = p.transcriber.Transcribe(ctx, path, workDir)
		if err != nil {
			warn(EventTranscriptionFailed, "transcription failed; storing audio without transcript", err)
			utterances = nil
		} else if utterances == nil {
			utterances = make([]contextview.Utterance, 0)
		}
	}

	if len(utterances) > 0 {
		fillEnglish(utterances)
		if p.translator != nil {
			translated, err := p.translate(ctx, utterances)
			switch {
			case err != nil:
				warn(EventTranslationFailed, "translation failed; using source text", err)
			case !translated:
				warn(EventTranslationMismatch, "translation line count mismatch; using source text",
					fmt.Errorf("expected %d lines", len(utterances)))
			default:
				result.Translated = true
			}
		}
	}

	sample, err := p.store.AddAudioSample(ctx, contextID, store.AudioSample{Name: name, FilePath: path}, utterances)
	if err != nil {
		discardUpload(logger, path, filepath.Join(dir, id))
		return nil, err
	}
	result.Audio = sample
	result.Utterances = len(utterances)

	for _, speaker := range distinctSpeakers(utterances) {
		_, created, err := p.store.EnsureSpeaker(ctx, contextID, speaker, "")
		if err != nil {
			warn(EventSpeakerFailed, "speaker upsert failed", err)
			continue
		}
		if created {
			result.NewSpeakers = append(result.NewSpeakers, speaker)
		}
	}

	if p.summarizer != nil && len(utterances) > 0 {
		if err := p.summarize(ctx, contextID); err != nil {
			warn(EventSummaryFailed, "summary failed; keeping description", err)
		} else {
			result.Summarized = true
		}
	}

	logger.Info("audio ingested",
		logging.Int64("audio_id", sample.ID),
		logging.Int("utterances", result.Utterances),
		logging.Bool("translated", result.Translated),
		logging.Bool("summarized", result.Summarized),
		logging.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (p *Pipeline) summarize(ctx context.Context, contextID int64) error {
	payload, err := p.store.GetContext(ctx, contextID)
	if err != nil {
		return err
	}
	text := transcriptText(payload.AudioSamples)
	if text == "" {
		return nil
	}
	summary, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		return err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return fmt.Errorf("empty summary")
	}
	return p.store.UpdateDescription(ctx, contextID, summary)
}

// discardUpload removes the staged file and transcription scratch space of
// an upload that was not recorded.
func discardUpload(logger *slog.Logger, path, workDir string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.WarnWithContext(logger, "failed to remove staged upload", "staging_cleanup_failed",
			logging.String("file", path), logging.Error(err))
	}
	_ = os.RemoveAll(workDir)
}

func cleanFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "audio"
	}
	return name
}

func saveUpload(dir, name string, r io.Reader) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, err
	}
	size, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return "", 0, copyErr
		}
		return "", 0, closeErr
	}
	return path, size, nil
}
