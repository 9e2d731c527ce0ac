package catalog

import (
	"errors"
	"testing"

	"studio/internal/domain"
)

func TestLookupKnownModel(t *testing.T) {
	m, err := Lookup("fal-ai/flux/dev")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if m.Kind != domain.MediaKindImage || m.Strategy != StrategySync {
		t.Fatalf("unexpected descriptor %+v", m)
	}
}

func TestLookupUnknownModel(t *testing.T) {
	_, err := Lookup("fal-ai/does-not-exist")
	if !errors.Is(err, domain.ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestAllSortedAndComplete(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("expected 6 models, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("All() not sorted: %s before %s", all[i-1].ID, all[i].ID)
		}
	}
}

func TestMergedParamsOverridesDefaults(t *testing.T) {
	m, _ := Lookup("fal-ai/kling-video/v2.5-turbo/pro/text-to-video")
	merged := m.MergedParams(map[string]any{"duration": "10", "seed": 7})
	if merged["duration"] != "10" {
		t.Fatalf("caller param should win, got %v", merged["duration"])
	}
	if merged["aspect_ratio"] != "16:9" {
		t.Fatalf("default should survive, got %v", merged["aspect_ratio"])
	}
	if merged["seed"] != 7 {
		t.Fatalf("extra param dropped: %v", merged)
	}
	if len(m.DefaultParams) != 4 {
		t.Fatalf("defaults mutated: %v", m.DefaultParams)
	}
}

func TestValidateInputMissingImage(t *testing.T) {
	m, _ := Lookup("fal-ai/bytedance/seedance/v1/pro/image-to-video")
	err := m.ValidateInput(map[string]any{"prompt": "x"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateInputBadURL(t *testing.T) {
	m, _ := Lookup("fal-ai/bytedance/seedance/v1/pro/image-to-video")
	for _, bad := range []any{"not-a-url", "ftp://host/file.jpg", "", 42} {
		if err := m.ValidateInput(map[string]any{"image_url": bad}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("image_url=%v: expected ErrInvalidInput, got %v", bad, err)
		}
	}
}

func TestValidateInputOK(t *testing.T) {
	m, _ := Lookup("fal-ai/sync-lipsync/v2/pro")
	params := map[string]any{
		"video_url": "https://example.com/in.mp4",
		"audio_url": "https://example.com/voice.wav",
	}
	if err := m.ValidateInput(params); err != nil {
		t.Fatalf("ValidateInput: %v", err)
	}
}

func TestCheckAssetSizeLimit(t *testing.T) {
	m, _ := Lookup("fal-ai/bytedance/seedance/v1/pro/image-to-video")
	if err := m.CheckAsset("image/png", 25*1024*1024); !errors.Is(err, domain.ErrInputTooLarge) {
		t.Fatalf("25MB against 20MB cap: expected ErrInputTooLarge, got %v", err)
	}
	if err := m.CheckAsset("image/png", 5*1024*1024); err != nil {
		t.Fatalf("5MB should pass: %v", err)
	}
}

func TestCheckAssetMIME(t *testing.T) {
	m, _ := Lookup("fal-ai/bytedance/seedance/v1/pro/image-to-video")
	if err := m.CheckAsset("image/tiff", 1024); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("tiff: expected ErrInvalidInput, got %v", err)
	}
	if err := m.CheckAsset("image/jpeg; charset=binary", 1024); err != nil {
		t.Fatalf("jpeg with params should pass: %v", err)
	}
	// Unknown content type is not rejected locally; the provider decides.
	if err := m.CheckAsset("", 1024); err != nil {
		t.Fatalf("empty content type should pass: %v", err)
	}
}
