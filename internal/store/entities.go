package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"earshot/internal/contextview"
	"earshot/internal/services"
)

// AddSpeaker appends a speaker to a context. Duplicate names are allowed here;
// use EnsureSpeaker to deduplicate.
func (s *Store) AddSpeaker(ctx context.Context, contextID int64, name, description string) (contextview.Speaker, error) {
	ctx = ensureContext(ctx)
	name = strings.TrimSpace(name)
	if name == "" {
		return contextview.Speaker{}, services.Wrap(services.ErrValidation, "store", "add speaker", "name is required", nil)
	}
	var speaker contextview.Speaker
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireContext(ctx, tx, contextID); err != nil {
			return err
		}
		created, err := insertSpeaker(ctx, tx, contextID, name, description)
		if err != nil {
			return err
		}
		speaker = created
		return s.touchContext(ctx, tx, contextID)
	})
	return speaker, err
}

// EnsureSpeaker returns the first speaker with the given name in the context,
// creating it when absent. The boolean reports whether a row was inserted.
func (s *Store) EnsureSpeaker(ctx context.Context, contextID int64, name, description string) (contextview.Speaker, bool, error) {
	ctx = ensureContext(ctx)
	name = strings.TrimSpace(name)
	if name == "" {
		return contextview.Speaker{}, false, services.Wrap(services.ErrValidation, "store", "ensure speaker", "name is required", nil)
	}
	var (
		speaker contextview.Speaker
		created bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireContext(ctx, tx, contextID); err != nil {
			return err
		}
		var (
			id   int64
			desc string
		)
		row := tx.QueryRowContext(ctx,
			`SELECT id, description FROM speakers WHERE context_id = ? AND name = ? ORDER BY id LIMIT 1`,
			contextID, name,
		)
		switch err := row.Scan(&id, &desc); {
		case err == nil:
			speaker = contextview.Speaker{ID: strconv.FormatInt(id, 10), Name: name, Description: desc}
			created = false
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("find speaker: %w", err)
		}
		inserted, err := insertSpeaker(ctx, tx, contextID, name, description)
		if err != nil {
			return err
		}
		speaker = inserted
		created = true
		return s.touchContext(ctx, tx, contextID)
	})
	return speaker, created, err
}

func insertSpeaker(ctx context.Context, tx *sql.Tx, contextID int64, name, description string) (contextview.Speaker, error) {
	description = strings.TrimSpace(description)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO speakers (context_id, name, description) VALUES (?, ?, ?)`,
		contextID, name, description,
	)
	if err != nil {
		return contextview.Speaker{}, fmt.Errorf("insert speaker: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return contextview.Speaker{}, fmt.Errorf("last insert id: %w", err)
	}
	return contextview.Speaker{ID: strconv.FormatInt(id, 10), Name: name, Description: description}, nil
}

// AddHierarchy records a parent -> child relation by speaker name. Names are
// not checked against the speaker table; unresolved entries are dropped at
// projection time.
func (s *Store) AddHierarchy(ctx context.Context, contextID int64, parentName, childName string) error {
	ctx = ensureContext(ctx)
	parentName = strings.TrimSpace(parentName)
	childName = strings.TrimSpace(childName)
	if parentName == "" || childName == "" {
		return services.Wrap(services.ErrValidation, "store", "add hierarchy", "parent and child names are required", nil)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireContext(ctx, tx, contextID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO hierarchy (context_id, parent_name, child_name) VALUES (?, ?, ?)`,
			contextID, parentName, childName,
		); err != nil {
			return fmt.Errorf("insert hierarchy: %w", err)
		}
		return s.touchContext(ctx, tx, contextID)
	})
}

// AddCodeword appends a codeword to a context.
func (s *Store) AddCodeword(ctx context.Context, contextID int64, word, meaning string) error {
	ctx = ensureContext(ctx)
	word = strings.TrimSpace(word)
	if word == "" {
		return services.Wrap(services.ErrValidation, "store", "add codeword", "word is required", nil)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireContext(ctx, tx, contextID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO codewords (context_id, word, meaning) VALUES (?, ?, ?)`,
			contextID, word, strings.TrimSpace(meaning),
		); err != nil {
			return fmt.Errorf("insert codeword: %w", err)
		}
		return s.touchContext(ctx, tx, contextID)
	})
}

// AddAudioSample stores an audio sample and its utterances in one transaction.
// A nil utterance slice records the sample as untranscribed.
func (s *Store) AddAudioSample(ctx context.Context, contextID int64, sample AudioSample, utterances []contextview.Utterance) (*AudioSample, error) {
	ctx = ensureContext(ctx)
	sample.Name = strings.TrimSpace(sample.Name)
	if sample.Name == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "add audio sample", "name is required", nil)
	}
	sample.ContextID = contextID
	sample.Transcribed = utterances != nil
	sample.CreatedAt = time.Now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireContext(ctx, tx, contextID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO audio_samples (context_id, name, description, file_path, transcribed, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			contextID,
			sample.Name,
			strings.TrimSpace(sample.Description),
			nullableString(sample.FilePath),
			boolToInt(sample.Transcribed),
			formatTime(sample.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert audio sample: %w", err)
		}
		audioID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		sample.ID = audioID

		for position, utterance := range utterances {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO utterances (audio_id, position, speaker, start_time, end_time, text_en, text_ru)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				audioID,
				position,
				utterance.Speaker,
				utterance.StartTime,
				utterance.EndTime,
				utterance.Text.EN,
				utterance.Text.RU,
			); err != nil {
				return fmt.Errorf("insert utterance %d: %w", position, err)
			}
		}
		return s.touchContext(ctx, tx, contextID)
	})
	if err != nil {
		return nil, err
	}
	return &sample, nil
}
