package gateway

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// Composite resizes the generated background to the cutout's pixel
// dimensions (cover-fit, centered crop) and overlays the cutout on top of
// it, producing the job's final artifact.
func (g *Gateway) Composite(ctx context.Context, foreground, background domain.ArtifactRef) (domain.ArtifactRef, error) {
	ctx, cancel := g.stageCtx(ctx)
	defer cancel()

	fgData, err := g.store.Read(ctx, foreground)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageComposite, "read foreground: %v", err)
	}
	bgData, err := g.store.Read(ctx, background)
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageComposite, "read background: %v", err)
	}

	fg, _, err := image.Decode(bytes.NewReader(fgData))
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageComposite, "decode foreground: %v", err)
	}
	bg, _, err := image.Decode(bytes.NewReader(bgData))
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageComposite, "decode background: %v", err)
	}

	canvas := coverFit(bg, fg.Bounds().Dx(), fg.Bounds().Dy())
	draw.Draw(canvas, canvas.Bounds(), fg, fg.Bounds().Min, draw.Over)

	var out bytes.Buffer
	if err := png.Encode(&out, canvas); err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageComposite, "encode final image: %v", err)
	}

	ref, err := g.store.Store(ctx, "final", out.Bytes(), "image/png")
	if err != nil {
		return domain.ArtifactRef{}, domain.NewGatewayError(domain.StageComposite, "store final image: %v", err)
	}

	g.logger.Debug().Str("artifact", ref.Key).Msg("images composited")
	return ref, nil
}

// coverFit scales src to fill a width×height canvas, cropping the overflow
// symmetrically so the result stays centered.
func coverFit(src image.Image, width, height int) *image.RGBA {
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()

	// Crop the source to the target aspect ratio before scaling.
	cropW, cropH := srcW, srcH
	if srcW*height > width*srcH {
		cropW = srcH * width / height
	} else {
		cropH = srcW * height / width
	}
	crop := image.Rect(0, 0, cropW, cropH).
		Add(image.Pt(sb.Min.X+(srcW-cropW)/2, sb.Min.Y+(srcH-cropH)/2))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return dst
}
