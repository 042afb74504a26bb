// Package model maps logical model identifiers to concrete filesystem
// paths or remote repository identifiers.
package model

import (
	"errors"
	"fmt"

	"github.com/book-expert/tts-manager/internal/core"
)

// Tier selects the model size.
type Tier string

// Supported model tiers.
const (
	// TierPro is the 1.7B parameter family (best quality).
	TierPro Tier = "pro"
	// TierLite is the 0.6B parameter family (faster).
	TierLite Tier = "lite"
)

// Model storage folder names, as published on the remote hub.
const (
	folderProCustom  = "Qwen3-TTS-12Hz-1.7B-CustomVoice-8bit"
	folderProDesign  = "Qwen3-TTS-12Hz-1.7B-VoiceDesign-8bit"
	folderProBase    = "Qwen3-TTS-12Hz-1.7B-Base-8bit"
	folderLiteCustom = "Qwen3-TTS-12Hz-0.6B-CustomVoice-8bit"
	folderLiteBase   = "Qwen3-TTS-12Hz-0.6B-Base-8bit"
)

// Output subfolder names under the outputs directory.
const (
	subfolderCustom = "CustomVoice"
	subfolderDesign = "VoiceDesign"
	subfolderClones = "Clones"
)

// ErrNoSuchModel is returned when no catalog entry matches a mode/tier pair.
var ErrNoSuchModel = errors.New("no model available")

// Descriptor describes one synthesizer model. Descriptors are static
// and immutable at runtime.
type Descriptor struct {
	// Name is the display name shown in menus.
	Name string
	// Folder is the storage folder name under the models directory.
	Folder string
	// Mode is the generation mode the model supports.
	Mode core.Mode
	// OutputSubfolder is where generated files land under the outputs
	// directory.
	OutputSubfolder string
	// Tier is the model size family.
	Tier Tier
}

// Catalog returns all known models in menu order: pro tier first, then
// lite. The slice is freshly allocated on each call so callers may not
// mutate shared state.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Name:            "Custom Voice",
			Folder:          folderProCustom,
			Mode:            core.ModeCustom,
			OutputSubfolder: subfolderCustom,
			Tier:            TierPro,
		},
		{
			Name:            "Voice Design",
			Folder:          folderProDesign,
			Mode:            core.ModeDesign,
			OutputSubfolder: subfolderDesign,
			Tier:            TierPro,
		},
		{
			Name:            "Voice Cloning",
			Folder:          folderProBase,
			Mode:            core.ModeClone,
			OutputSubfolder: subfolderClones,
			Tier:            TierPro,
		},
		{
			Name:            "Custom Voice",
			Folder:          folderLiteCustom,
			Mode:            core.ModeCustom,
			OutputSubfolder: subfolderCustom,
			Tier:            TierLite,
		},
		{
			Name:            "Voice Cloning",
			Folder:          folderLiteBase,
			Mode:            core.ModeClone,
			OutputSubfolder: subfolderClones,
			Tier:            TierLite,
		},
	}
}

// Lookup returns the descriptor for a mode/tier pair. Voice design has
// no lite tier, so that combination reports ErrNoSuchModel.
func Lookup(mode core.Mode, tier Tier) (Descriptor, error) {
	for _, desc := range Catalog() {
		if desc.Mode == mode && desc.Tier == tier {
			return desc, nil
		}
	}

	return Descriptor{}, fmt.Errorf("%w: mode %q, tier %q", ErrNoSuchModel, mode, tier)
}
