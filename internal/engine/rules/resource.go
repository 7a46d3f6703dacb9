package rules

import (
	"context"
	"path/filepath"
	"regexp"

	"github.com/CyberHandLLC/archguard/internal/engine"
)

// Pre-compiled raw-media patterns.
var (
	rawImgTagRe  = regexp.MustCompile(`<img[\s>]`)
	bgImageURLRe = regexp.MustCompile(`background(?:-image)?\s*:\s*[^;}]*url\s*\(`)
	rawPictureRe = regexp.MustCompile(`<picture[\s>]`)
)

// ResourceRule flags raw unoptimized media embedding in favor of the
// project's Image component.
type ResourceRule struct{}

func NewResourceRule() *ResourceRule {
	return &ResourceRule{}
}

func (r *ResourceRule) Name() string {
	return "resource"
}

func (r *ResourceRule) AppliesTo(path string) bool {
	switch filepath.Ext(path) {
	case ".tsx", ".jsx":
		return true
	}
	return false
}

func (r *ResourceRule) Check(ctx context.Context, f *engine.File) (*engine.RuleResult, error) {
	res := &engine.RuleResult{}

	if rawImgTagRe.MatchString(f.Content) {
		res.Errors = append(res.Errors,
			"raw <img> tag; use the optimized Image component instead")
	}
	if rawPictureRe.MatchString(f.Content) {
		res.Warnings = append(res.Warnings,
			"raw <picture> element; prefer the optimized Image component")
	}
	if bgImageURLRe.MatchString(f.Content) {
		res.Warnings = append(res.Warnings,
			"inline background-image url(); images embedded via CSS bypass optimization")
	}

	return res, nil
}
