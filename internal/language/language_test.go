package language

import (
	"testing"
	"time"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"ru", "ru"},
		{"eng", "en"},
		{"rus", "ru"},
		{"ukr", "uk"},
		{"english", "en"},
		{"Russian", "ru"},
		{"русский", "ru"},
		{"en-US", "en"},
		{"ru-RU", "ru"},
		{"de", "de"},
		{"", ""},
		{" ", ""},
		{"not a language", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToISO2(tt.input)
			if result != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Code
		wantErr bool
	}{
		{"en", English, false},
		{" RU ", Russian, false},
		{"rus", Russian, false},
		{"english", English, false},
		{"ru-RU", Russian, false},
		{"de", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"rus", "Russian"},
		{"", "Unknown"},
		{"xyz", "XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := DisplayName(tt.input); result != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBilingualResolve(t *testing.T) {
	text := Bilingual{EN: "Go", RU: "Иди"}
	if got := text.Resolve(English); got != "Go" {
		t.Fatalf("Resolve(en) = %q", got)
	}
	if got := text.Resolve(Russian); got != "Иди" {
		t.Fatalf("Resolve(ru) = %q", got)
	}
	if got := text.Resolve(Code("fr")); got != "Go" {
		t.Fatalf("Resolve(fr) = %q, want english fallback", got)
	}
}

func TestSettingToggleAndSet(t *testing.T) {
	s := NewSetting("")
	if s.Current() != English {
		t.Fatalf("expected default english, got %q", s.Current())
	}
	if got := s.Toggle(); got != Russian {
		t.Fatalf("Toggle() = %q, want ru", got)
	}
	if got := s.Toggle(); got != English {
		t.Fatalf("Toggle() = %q, want en", got)
	}
	if s.Set(Code("fr")) {
		t.Fatal("expected Set to reject unsupported language")
	}
	if !s.Set(Russian) || s.Current() != Russian {
		t.Fatalf("expected Set(ru) to apply, current %q", s.Current())
	}
}

func TestSettingSubscribeReceivesLatest(t *testing.T) {
	s := NewSetting(English)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Toggle()
	s.Toggle()
	s.Toggle()

	select {
	case got := <-ch:
		if got != Russian {
			t.Fatalf("expected latest value ru, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected a single coalesced notification, got extra %q", extra)
	default:
	}
}

func TestSettingSetSameValueDoesNotNotify(t *testing.T) {
	s := NewSetting(Russian)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Set(Russian)
	select {
	case got := <-ch:
		t.Fatalf("unexpected notification %q", got)
	default:
	}
}

func TestSettingCancelClosesChannel(t *testing.T) {
	s := NewSetting(English)
	ch, cancel := s.Subscribe()
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}
	s.Toggle()
}
