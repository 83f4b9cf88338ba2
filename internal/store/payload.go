package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"earshot/internal/contextview"
	"earshot/internal/language"
)

// GetContext loads a context with every attached entity, in insertion order.
// Audio samples that were never transcribed carry nil utterances.
func (s *Store) GetContext(ctx context.Context, id int64) (*contextview.Payload, error) {
	ctx = ensureContext(ctx)
	row, err := s.getContextRow(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := &contextview.Payload{
		Name:        row.Name,
		Description: row.Description,
	}
	if payload.Speakers, err = s.loadSpeakers(ctx, id); err != nil {
		return nil, err
	}
	if payload.Hierarchy, err = s.loadHierarchy(ctx, id); err != nil {
		return nil, err
	}
	if payload.Codewords, err = s.loadCodewords(ctx, id); err != nil {
		return nil, err
	}
	if payload.AudioSamples, err = s.loadAudio(ctx, id); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Store) loadSpeakers(ctx context.Context, contextID int64) ([]contextview.Speaker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description FROM speakers WHERE context_id = ? ORDER BY id`, contextID)
	if err != nil {
		return nil, fmt.Errorf("load speakers: %w", err)
	}
	defer rows.Close()

	speakers := make([]contextview.Speaker, 0)
	for rows.Next() {
		var (
			id      int64
			speaker contextview.Speaker
		)
		if err := rows.Scan(&id, &speaker.Name, &speaker.Description); err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		speaker.ID = strconv.FormatInt(id, 10)
		speakers = append(speakers, speaker)
	}
	return speakers, rows.Err()
}

func (s *Store) loadHierarchy(ctx context.Context, contextID int64) ([]contextview.HierarchyEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parent_name, child_name FROM hierarchy WHERE context_id = ? ORDER BY id`, contextID)
	if err != nil {
		return nil, fmt.Errorf("load hierarchy: %w", err)
	}
	defer rows.Close()

	entries := make([]contextview.HierarchyEntry, 0)
	for rows.Next() {
		var entry contextview.HierarchyEntry
		if err := rows.Scan(&entry.ParentName, &entry.ChildName); err != nil {
			return nil, fmt.Errorf("scan hierarchy: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) loadCodewords(ctx context.Context, contextID int64) ([]contextview.Codeword, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, meaning FROM codewords WHERE context_id = ? ORDER BY id`, contextID)
	if err != nil {
		return nil, fmt.Errorf("load codewords: %w", err)
	}
	defer rows.Close()

	codewords := make([]contextview.Codeword, 0)
	for rows.Next() {
		var codeword contextview.Codeword
		if err := rows.Scan(&codeword.Word, &codeword.Meaning); err != nil {
			return nil, fmt.Errorf("scan codeword: %w", err)
		}
		codewords = append(codewords, codeword)
	}
	return codewords, rows.Err()
}

func (s *Store) loadAudio(ctx context.Context, contextID int64) ([]contextview.Audio, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, transcribed FROM audio_samples WHERE context_id = ? ORDER BY id`, contextID)
	if err != nil {
		return nil, fmt.Errorf("load audio samples: %w", err)
	}

	audios := make([]contextview.Audio, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id          int64
			audio       contextview.Audio
			transcribed int
		)
		if err := rows.Scan(&id, &audio.Name, &audio.Description, &transcribed); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan audio sample: %w", err)
		}
		audio.ID = int(id)
		if transcribed != 0 {
			audio.Utterances = make([]contextview.Utterance, 0)
		}
		index[id] = len(audios)
		audios = append(audios, audio)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate audio samples: %w", err)
	}
	// The pool holds a single connection; release it before the next query.
	rows.Close()

	if len(audios) == 0 {
		return audios, nil
	}
	if err := s.loadUtterances(ctx, contextID, audios, index); err != nil {
		return nil, err
	}
	return audios, nil
}

func (s *Store) loadUtterances(ctx context.Context, contextID int64, audios []contextview.Audio, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.audio_id, u.speaker, u.start_time, u.end_time, u.text_en, u.text_ru
         FROM utterances u
         JOIN audio_samples a ON a.id = u.audio_id
         WHERE a.context_id = ?
         ORDER BY u.audio_id, u.position`, contextID)
	if err != nil {
		return fmt.Errorf("load utterances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			audioID   int64
			utterance contextview.Utterance
			en, ru    sql.NullString
		)
		if err := rows.Scan(&audioID, &utterance.Speaker, &utterance.StartTime, &utterance.EndTime, &en, &ru); err != nil {
			return fmt.Errorf("scan utterance: %w", err)
		}
		utterance.Text = language.Bilingual{EN: en.String, RU: ru.String}
		pos, ok := index[audioID]
		if !ok {
			continue
		}
		audios[pos].Utterances = append(audios[pos].Utterances, utterance)
	}
	return rows.Err()
}
