// Package catalog is the static model knowledge base: one descriptor per
// offered generation capability. Dispatch, input validation and size limits
// are all driven by the descriptor so adding a model never touches handler
// branching.
package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"studio/internal/domain"
)

// Strategy selects how a submission reaches the provider.
type Strategy string

const (
	// StrategySync submits and blocks until the provider returns the final
	// result. Suitable for fast models only.
	StrategySync Strategy = "sync"
	// StrategyQueue enqueues the job and completes later via webhook or
	// client polling. Used for long-running video and lip-sync models.
	StrategyQueue Strategy = "queue"
)

// Model describes one generation capability. Descriptors are read-only after
// process start.
type Model struct {
	ID            string
	Name          string
	Kind          domain.MediaKind
	Strategy      Strategy
	DefaultParams map[string]any
	RequiresImage bool
	RequiresVideo bool
	RequiresAudio bool
	MaxAssetBytes int64
	AcceptedMIME  []string
	Suggest       []string
}

var imageMIME = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif", "image/avif"}

const (
	mb                   = 1024 * 1024
	defaultImageCapBytes = 20 * mb
)

var models = map[string]Model{
	"fal-ai/flux/dev": {
		ID:            "fal-ai/flux/dev",
		Name:          "FLUX.1 [dev]",
		Kind:          domain.MediaKindImage,
		Strategy:      StrategySync,
		DefaultParams: map[string]any{"image_size": "square_hd"},
		Suggest:       []string{"cinematic still", "soft light", "highly detailed"},
	},
	"fal-ai/kling-video/v2.5-turbo/pro/text-to-video": {
		ID:       "fal-ai/kling-video/v2.5-turbo/pro/text-to-video",
		Name:     "Kling 2.5 Turbo Pro (T2V)",
		Kind:     domain.MediaKindVideo,
		Strategy: StrategySync,
		DefaultParams: map[string]any{
			"duration":        "5",
			"aspect_ratio":    "16:9",
			"negative_prompt": "blur, distort, and low quality",
			"cfg_scale":       0.5,
		},
		Suggest: []string{"smooth camera movement", "dramatic lighting"},
	},
	"fal-ai/kling-video/v2.5-turbo/pro/image-to-video": {
		ID:       "fal-ai/kling-video/v2.5-turbo/pro/image-to-video",
		Name:     "Kling 2.5 Turbo Pro (I2V)",
		Kind:     domain.MediaKindVideo,
		Strategy: StrategyQueue,
		DefaultParams: map[string]any{
			"duration":        "5",
			"negative_prompt": "blur, distort, and low quality",
			"cfg_scale":       0.5,
		},
		RequiresImage: true,
		MaxAssetBytes: defaultImageCapBytes,
		AcceptedMIME:  imageMIME,
		Suggest:       []string{"camera movement", "bring image to life", "add motion"},
	},
	"fal-ai/minimax/hailuo-02/pro/image-to-video": {
		ID:            "fal-ai/minimax/hailuo-02/pro/image-to-video",
		Name:          "MiniMax Hailuo-02 Pro (I2V)",
		Kind:          domain.MediaKindVideo,
		Strategy:      StrategyQueue,
		DefaultParams: map[string]any{"prompt_optimizer": true},
		RequiresImage: true,
		MaxAssetBytes: defaultImageCapBytes,
		AcceptedMIME:  imageMIME,
		Suggest:       []string{"natural movement", "dynamic scenes", "fluid motion"},
	},
	"fal-ai/bytedance/seedance/v1/pro/image-to-video": {
		ID:            "fal-ai/bytedance/seedance/v1/pro/image-to-video",
		Name:          "Seedance 1.0 Pro (I2V)",
		Kind:          domain.MediaKindVideo,
		Strategy:      StrategyQueue,
		DefaultParams: map[string]any{},
		RequiresImage: true,
		MaxAssetBytes: defaultImageCapBytes,
		AcceptedMIME:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
		Suggest:       []string{"animate image", "bring to life", "automatic motion"},
	},
	"fal-ai/sync-lipsync/v2/pro": {
		ID:            "fal-ai/sync-lipsync/v2/pro",
		Name:          "Sync Lip Sync v2 Pro (V2V)",
		Kind:          domain.MediaKindVideo,
		Strategy:      StrategyQueue,
		DefaultParams: map[string]any{"sync_mode": "cut_off"},
		RequiresVideo: true,
		RequiresAudio: true,
		Suggest:       []string{"lip sync", "voice over", "dialogue"},
	},
}

// Lookup returns the descriptor for a model id.
func Lookup(modelID string) (Model, error) {
	m, ok := models[modelID]
	if !ok {
		return Model{}, fmt.Errorf("%w: %s", domain.ErrUnknownModel, modelID)
	}
	return m, nil
}

// All returns every descriptor sorted by id, for the model picker.
func All() []Model {
	out := make([]Model, 0, len(models))
	for _, m := range models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MergedParams overlays caller params onto the model defaults.
func (m Model) MergedParams(params map[string]any) map[string]any {
	merged := make(map[string]any, len(m.DefaultParams)+len(params))
	for k, v := range m.DefaultParams {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

// RequiredInputKeys lists the param keys the model needs before submission.
func (m Model) RequiredInputKeys() []string {
	var keys []string
	if m.RequiresImage {
		keys = append(keys, "image_url")
	}
	if m.RequiresVideo {
		keys = append(keys, "video_url")
	}
	if m.RequiresAudio {
		keys = append(keys, "audio_url")
	}
	return keys
}

// ValidateInput checks required media params are present and are resolvable
// HTTP(S) URLs. Violations are client errors; no provider call should be
// made after a failure here.
func (m Model) ValidateInput(params map[string]any) error {
	for _, key := range m.RequiredInputKeys() {
		raw, ok := params[key]
		if !ok {
			return fmt.Errorf("%w: %s required in params", domain.ErrInvalidInput, key)
		}
		s, ok := raw.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s required in params", domain.ErrInvalidInput, key)
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s must be a resolvable http(s) URL", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// CheckAsset enforces the model's declared size and MIME limits for an input
// asset. A zero MaxAssetBytes means no local size cap; an empty AcceptedMIME
// list accepts any type.
func (m Model) CheckAsset(contentType string, size int64) error {
	if m.MaxAssetBytes > 0 && size > m.MaxAssetBytes {
		return fmt.Errorf("%w: asset is %d bytes, limit is %d", domain.ErrInputTooLarge, size, m.MaxAssetBytes)
	}
	if len(m.AcceptedMIME) == 0 || contentType == "" {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, accepted := range m.AcceptedMIME {
		if normalized == accepted {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported media type %s", domain.ErrInvalidInput, normalized)
}
