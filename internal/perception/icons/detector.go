// Package icons finds unlabeled icon glyphs in the empty bands of a captured
// window: pixel clustering on flat bars, a saliency fallback for outline
// glyphs, and spacing interpolation to complete evenly-spaced rows.
package icons

import (
	"image"
	"math"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/output"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// Config tunes the detector. Zero values fall back to defaults.
type Config struct {
	// ProximityRadius drops candidates already covered by recognized text.
	ProximityRadius float64
	// DedupRadius merges clustering and saliency candidates.
	DedupRadius float64
	// MinSaliencyZoneHeight gates the saliency fallback to zones tall
	// enough for it to be worth the transform.
	MinSaliencyZoneHeight float64
}

func DefaultConfig() Config {
	return Config{
		ProximityRadius:       25.0,
		DedupRadius:           20.0,
		MinSaliencyZoneHeight: 60.0,
	}
}

type Detector struct {
	cfg    Config
	logger output.LoggerPort
}

func NewDetector(cfg Config, logger output.LoggerPort) *Detector {
	def := DefaultConfig()
	if cfg.ProximityRadius <= 0 {
		cfg.ProximityRadius = def.ProximityRadius
	}
	if cfg.DedupRadius <= 0 {
		cfg.DedupRadius = def.DedupRadius
	}
	if cfg.MinSaliencyZoneHeight <= 0 {
		cfg.MinSaliencyZoneHeight = def.MinSaliencyZoneHeight
	}
	return &Detector{cfg: cfg, logger: logger}
}

// Detect returns icons not already covered by recognized text. taps is the
// current resolved element set; win the logical window size the taps are
// expressed in.
func (d *Detector) Detect(img image.Image, taps []entity.TapPoint, win entity.WindowSize) []entity.DetectedIcon {
	if img == nil || win.Width <= 0 || win.Height <= 0 {
		return nil
	}

	scale := float64(img.Bounds().Dx()) / win.Width
	if scale <= 0 {
		scale = 1
	}

	var all []entity.DetectedIcon
	for _, zone := range DiscoverZones(taps, win) {
		clustered := clusterZone(img, zone, scale)

		var salient []entity.DetectedIcon
		if zone.Height() >= d.cfg.MinSaliencyZoneHeight {
			salient = saliencyZone(img, zone, scale)
		}

		merged := mergeByProximity(clustered, salient, d.cfg.DedupRadius)
		merged = completeRow(merged, win)

		if d.logger != nil {
			d.logger.Debug("icon zone scanned",
				"top", zone.Top, "bottom", zone.Bottom,
				"clustered", len(clustered), "salient", len(salient), "kept", len(merged))
		}
		all = append(all, merged...)
	}

	return filterNearText(all, taps, d.cfg.ProximityRadius)
}

// mergeByProximity deduplicates the saliency candidates against the
// clustering candidates. Clustering wins on conflicts: its centroids are
// computed at full resolution.
func mergeByProximity(clustered, salient []entity.DetectedIcon, radius float64) []entity.DetectedIcon {
	merged := clustered
	for _, s := range salient {
		dup := false
		for _, c := range clustered {
			if math.Hypot(s.X-c.X, s.Y-c.Y) <= radius {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, s)
		}
	}
	return merged
}

func filterNearText(icons []entity.DetectedIcon, taps []entity.TapPoint, radius float64) []entity.DetectedIcon {
	var kept []entity.DetectedIcon
	for _, ic := range icons {
		near := false
		for _, tp := range taps {
			if math.Hypot(ic.X-tp.X, ic.Y-tp.Y) <= radius {
				near = true
				break
			}
		}
		if !near {
			kept = append(kept, ic)
		}
	}
	return kept
}
