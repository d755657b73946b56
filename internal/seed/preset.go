package seed

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var builtinPresets embed.FS

// Preset describes the shape of a seeded social graph. Ratios are probabilities
// in [0, 1].
type Preset struct {
	Name            string   `yaml:"name"`
	Users           int      `yaml:"users"`
	PostsPerUser    int      `yaml:"posts_per_user"`
	FollowRatio     float64  `yaml:"follow_ratio"`
	MutualRatio     float64  `yaml:"mutual_ratio"`
	PrivateRatio    float64  `yaml:"private_ratio"`
	ShareRatio      float64  `yaml:"share_ratio"`
	LikeRatio       float64  `yaml:"like_ratio"`
	CommentsPerPost int      `yaml:"comments_per_post"`
	MaxDays         int      `yaml:"max_days"`
	Themes          []string `yaml:"themes"`
}

// DefaultPreset is used when no preset is named.
func DefaultPreset() Preset {
	return Preset{
		Name:            "default",
		Users:           25,
		PostsPerUser:    5,
		FollowRatio:     0.2,
		MutualRatio:     0.5,
		PrivateRatio:    0.25,
		ShareRatio:      0.1,
		LikeRatio:       0.1,
		CommentsPerPost: 2,
		MaxDays:         90,
		Themes:          []string{"General", "Technology", "Travel", "Music"},
	}
}

// ParsePreset decodes a YAML preset. Missing fields keep their DefaultPreset value.
func ParsePreset(data []byte) (Preset, error) {
	p := DefaultPreset()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// LoadPreset resolves ref as a built-in preset name first and a file path second.
func LoadPreset(ref string) (Preset, error) {
	if ref == "" {
		return DefaultPreset(), nil
	}
	if data, err := builtinPresets.ReadFile(path.Join("presets", ref+".yml")); err == nil {
		return ParsePreset(data)
	}
	data, err := os.ReadFile(ref) // #nosec G304 -- operator-supplied preset path
	if err != nil {
		return Preset{}, fmt.Errorf("load preset %q: %w", ref, err)
	}
	return ParsePreset(data)
}

// Validate checks counts and ratios.
func (p Preset) Validate() error {
	var errs []error
	if p.Users < 0 || p.PostsPerUser < 0 || p.CommentsPerPost < 0 {
		errs = append(errs, errors.New("counts must not be negative"))
	}
	for name, r := range map[string]float64{
		"follow_ratio":  p.FollowRatio,
		"mutual_ratio":  p.MutualRatio,
		"private_ratio": p.PrivateRatio,
		"share_ratio":   p.ShareRatio,
		"like_ratio":    p.LikeRatio,
	} {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", name, r))
		}
	}
	if p.PostsPerUser > 0 && len(p.Themes) == 0 {
		errs = append(errs, errors.New("at least one theme is required to seed posts"))
	}
	if p.MaxDays <= 0 {
		errs = append(errs, errors.New("max_days must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid preset %q: %w", p.Name, errors.Join(errs...))
	}
	return nil
}
