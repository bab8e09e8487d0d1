package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("hello world"), 0},
		{"b nil", NewFingerprint("hello world"), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"
	got := CosineSimilarity(NewFingerprint(text), NewFingerprint(text))
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityPartialOverlap(t *testing.T) {
	got := CosineSimilarity(NewFingerprint("dark souls remastered"), NewFingerprint("dark souls"))
	if got <= 0 || got >= 1 {
		t.Errorf("CosineSimilarity(partial) = %v, want between 0 and 1", got)
	}
}

func TestTokenizeDropsSingleRuneTokens(t *testing.T) {
	got := Tokenize("Go, a Tour of it!")
	want := []string{"go", "tour", "of", "it"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFingerprintTokenCount(t *testing.T) {
	if n := (*Fingerprint)(nil).TokenCount(); n != 0 {
		t.Fatalf("nil TokenCount = %d", n)
	}
	if n := NewFingerprint("hello hello world").TokenCount(); n != 2 {
		t.Fatalf("TokenCount = %d, want 2", n)
	}
	if NewFingerprint("") != nil {
		t.Fatal("expected nil fingerprint for empty text")
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 100},
		{"abc", "", 0},
		{"halo reach", "halo reech", 90},
		{"pink floyd", "pink floyd", 100},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
	if Ratio("abcd", "abed") != Ratio("abed", "abcd") {
		t.Fatal("Ratio not symmetric")
	}
}

func TestTokenSetRatio(t *testing.T) {
	if got := TokenSetRatio("dark souls", "souls dark"); got != 100 {
		t.Fatalf("reordered tokens = %v, want 100", got)
	}
	if got := TokenSetRatio("dark souls", "dark souls dark"); got != 100 {
		t.Fatalf("repeated tokens = %v, want 100", got)
	}
	if got := TokenSetRatio("halo reach", "halo reech"); math.Abs(got-90) > 1e-9 {
		t.Fatalf("typo pair = %v, want 90", got)
	}
	if got := TokenSetRatio("dark souls", "light hearts"); got >= 60 {
		t.Fatalf("unrelated titles scored %v", got)
	}
	if got := TokenSetRatio("", "anything"); got != 0 {
		t.Fatalf("empty side = %v, want 0", got)
	}
	if TokenSetRatio("the last of us", "last of us part") != TokenSetRatio("last of us part", "the last of us") {
		t.Fatal("TokenSetRatio not symmetric")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Pre Import: Spotify"); got != "pre_import__spotify" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken("  "); got != "unknown" {
		t.Fatalf("SanitizeToken(blank) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("Truncate = %q", got)
	}
}
