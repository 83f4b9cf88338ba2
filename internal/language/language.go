package language

import (
	"fmt"
	"strings"

	xlang "golang.org/x/text/language"
)

// Code identifies a display language for transcripts.
type Code string

const (
	English Code = "en"
	Russian Code = "ru"
)

// Default is the language a fresh Setting starts with.
const Default = English

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "English", []string{"english"}},
	{"ru", "rus", "Russian", []string{"russian", "русский"}},
	{"uk", "ukr", "Ukrainian", []string{"ukrainian"}},
	{"be", "bel", "Belarusian", []string{"belarusian"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts a language code, word, or BCP 47 tag to ISO 639-1.
// Returns empty string for unrecognized input.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlang.No {
		return ""
	}
	if iso := base.String(); len(iso) == 2 {
		return iso
	}
	return ""
}

// Parse resolves user input ("en", "RU", "rus", "russian", "ru-RU") to a
// supported display language.
func Parse(value string) (Code, error) {
	switch ToISO2(value) {
	case string(English):
		return English, nil
	case string(Russian):
		return Russian, nil
	}
	return "", fmt.Errorf("unsupported language %q (want en or ru)", strings.TrimSpace(value))
}

// Other returns the opposite display language.
func (c Code) Other() Code {
	if c == Russian {
		return English
	}
	return Russian
}

// Valid reports whether c is a supported display language.
func (c Code) Valid() bool {
	return c == English || c == Russian
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Bilingual holds the same text in both display languages.
type Bilingual struct {
	EN string `json:"en"`
	RU string `json:"ru"`
}

// Resolve picks the text for lang. Unknown languages fall back to English.
func (b Bilingual) Resolve(lang Code) string {
	if lang == Russian {
		return b.RU
	}
	return b.EN
}
