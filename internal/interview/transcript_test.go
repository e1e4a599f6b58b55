package interview

import (
	"testing"

	"intervu/internal/types"
)

func TestBuildTranscript(t *testing.T) {
	history := []types.Turn{
		{Speaker: types.SpeakerInterviewer, Text: "Tell me about the role.\n"},
		{Speaker: types.SpeakerUser, Text: "  I built the ingestion pipeline.  "},
	}

	got := BuildTranscript(history)
	want := "(Interviewer): Tell me about the role.\n(User): I built the ingestion pipeline."
	if got != want {
		t.Errorf("BuildTranscript() = %q, want %q", got, want)
	}
}

func TestBuildTranscriptEmpty(t *testing.T) {
	if got := BuildTranscript(nil); got != "" {
		t.Errorf("BuildTranscript(nil) = %q, want empty", got)
	}
}

func TestFallbackPickerSeeded(t *testing.T) {
	a := NewSeededFallbackPicker(42)
	b := NewSeededFallbackPicker(42)

	for i := 0; i < 10; i++ {
		pa, pb := a.Pick(), b.Pick()
		if pa != pb {
			t.Fatalf("seeded pickers diverged at draw %d: %q vs %q", i, pa, pb)
		}
		found := false
		for _, q := range fallbackFollowUps {
			if pa == q {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("pick %q is not in the fallback pool", pa)
		}
	}
}
