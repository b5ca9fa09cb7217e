package icons

import (
	"image"
	"math"
	"math/cmplx"

	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

const (
	// saliencyWidth is the downscaled working width. Spectral residual is
	// computed at coarse scale; icon positions survive the reduction.
	saliencyWidth = 64
	// saliencyStdFactor sets the binarization threshold above the mean.
	saliencyStdFactor = 2.0
	// minBlobArea rejects single-pixel speckle in the downscaled map.
	minBlobArea = 3
)

// saliencyZone runs a spectral-residual saliency pass over the cropped zone.
// Column clustering favors solid-fill icons on flat backgrounds; this pass
// recovers outline-style icons the projection misses.
func saliencyZone(img image.Image, zone entity.EmptyZone, scale float64) []entity.DetectedIcon {
	b := img.Bounds()
	y0 := clampInt(b.Min.Y+int(zone.Top*scale), b.Min.Y, b.Max.Y)
	y1 := clampInt(b.Min.Y+int(zone.Bottom*scale), b.Min.Y, b.Max.Y)
	if y1-y0 < 4 || b.Dx() < 4 {
		return nil
	}

	w := saliencyWidth
	h := (y1 - y0) * w / b.Dx()
	if h < 4 {
		h = 4
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, image.Rect(b.Min.X, y0, b.Max.X, y1), xdraw.Src, nil)

	sal := spectralResidual(gray, w, h)

	mean, std := stat.MeanStdDev(sal, nil)
	threshold := mean + saliencyStdFactor*std

	blobs := connectedBlobs(sal, w, h, threshold)

	// Map downscaled blob centroids back to window points.
	factorX := float64(b.Dx()) / float64(w) / scale
	factorY := float64(y1-y0) / float64(h) / scale

	var icons []entity.DetectedIcon
	for _, blob := range blobs {
		if blob.area < minBlobArea {
			continue
		}
		icon := entity.DetectedIcon{
			X:    blob.cx * factorX,
			Y:    blob.cy*factorY + zone.Top,
			Size: blob.width * factorX,
		}
		if icon.Size >= minIconWidth && icon.Size <= maxIconWidth {
			icons = append(icons, icon)
		}
	}
	return icons
}

// spectralResidual computes the classic saliency map: suppress the average
// log-spectrum, keep the residual, and transform back.
func spectralResidual(gray *image.Gray, w, h int) []float64 {
	data := make([]complex128, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			data[y*w+x] = complex(float64(gray.GrayAt(x, y).Y)/255, 0)
		}
	}

	fft2d(data, w, h, false)

	logAmp := make([]float64, len(data))
	phase := make([]float64, len(data))
	for i, v := range data {
		logAmp[i] = math.Log1p(cmplx.Abs(v))
		phase[i] = cmplx.Phase(v)
	}

	smoothed := meanFilter3x3(logAmp, w, h)
	for i := range data {
		residual := logAmp[i] - smoothed[i]
		data[i] = cmplx.Rect(math.Exp(residual), phase[i])
	}

	fft2d(data, w, h, true)

	sal := make([]float64, len(data))
	for i, v := range data {
		m := cmplx.Abs(v)
		sal[i] = m * m
	}
	return meanFilter3x3(sal, w, h)
}

// fft2d transforms rows then columns in place.
func fft2d(data []complex128, w, h int, inverse bool) {
	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(row, data[y*w:(y+1)*w])
		if inverse {
			rowFFT.Sequence(data[y*w:(y+1)*w], row)
		} else {
			rowFFT.Coefficients(data[y*w:(y+1)*w], row)
		}
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	out := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = data[y*w+x]
		}
		if inverse {
			colFFT.Sequence(out, col)
		} else {
			colFFT.Coefficients(out, col)
		}
		for y := 0; y < h; y++ {
			data[y*w+x] = out[y]
		}
	}

	if inverse {
		n := complex(float64(w*h), 0)
		for i := range data {
			data[i] /= n
		}
	}
}

func meanFilter3x3(v []float64, w, h int) []float64 {
	out := make([]float64, len(v))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum, n := 0.0, 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xx, yy := x+dx, y+dy
					if xx >= 0 && xx < w && yy >= 0 && yy < h {
						sum += v[yy*w+xx]
						n++
					}
				}
			}
			out[y*w+x] = sum / float64(n)
		}
	}
	return out
}

type blob struct {
	cx, cy float64
	width  float64
	area   int
}

// connectedBlobs extracts 4-connected components above the threshold.
func connectedBlobs(sal []float64, w, h int, threshold float64) []blob {
	seen := make([]bool, len(sal))
	var blobs []blob

	for i := range sal {
		if seen[i] || sal[i] < threshold {
			continue
		}

		var queue []int
		queue = append(queue, i)
		seen[i] = true

		sumX, sumY := 0.0, 0.0
		minX, maxX := w, -1
		area := 0

		for len(queue) > 0 {
			p := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			x, y := p%w, p/w
			sumX += float64(x)
			sumY += float64(y)
			area++
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}

			for _, q := range [4]int{p - 1, p + 1, p - w, p + w} {
				if q < 0 || q >= len(sal) || seen[q] || sal[q] < threshold {
					continue
				}
				// No wrap-around between row ends.
				if (q == p-1 && x == 0) || (q == p+1 && x == w-1) {
					continue
				}
				seen[q] = true
				queue = append(queue, q)
			}
		}

		blobs = append(blobs, blob{
			cx:    sumX / float64(area),
			cy:    sumY / float64(area),
			width: float64(maxX - minX + 1),
			area:  area,
		})
	}
	return blobs
}
