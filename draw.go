package main

import (
	"image"
	"image/color"
	"math"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Frame composition. Draw order is fixed: terrain, water overlay, wakes,
// building floors, entities (bottom-up by Y), walls and roofs, explosions,
// then the HUD on top. Every pass reads only the snapshot captured at the
// top of Update.

const (
	spriteSizePx = 48
	// Vertical offset from an entity's world position (its feet) to the
	// top of its sprite.
	spriteFootOffset = 40

	nametagOffset = 48
)

func (rc *renderContext) visibleTileRange(viewW, viewH int) (min, max tileCoord) {
	min = worldToTile(rc.camX, rc.camY)
	max = worldToTile(rc.camX+float64(viewW), rc.camY+float64(viewH))
	min.X--
	min.Y--
	max.X++
	max.Y++
	return min, max
}

func (rc *renderContext) drawTerrain(dst *ebiten.Image) {
	viewW, viewH := dst.Bounds().Dx(), dst.Bounds().Dy()
	minT, maxT := rc.visibleTileRange(viewW, viewH)

	for ty := minT.Y; ty <= maxT.Y; ty++ {
		for tx := minT.X; tx <= maxT.X; tx++ {
			tc := tileCoord{tx, ty}
			td := rc.terrain.resolveTile(rc.world.tiles, tc)
			ox, oy := tileOrigin(tc)
			sx := float32(ox - rc.camX)
			sy := float32(oy - rc.camY)

			// Base fill, padded 1px on each side so nearest-filtered
			// transition overlays never show seams between tiles.
			c := tileFallbackColors[td.Type]
			vector.DrawFilledRect(dst, sx-1, sy-1, tileSizePx+2, tileSizePx+2, c, false)

			for _, ov := range td.Overlays {
				sheet := rc.images.asset(ov.Asset)
				op := &ebiten.DrawImageOptions{Filter: drawFilter}
				op.GeoM.Translate(float64(sx), float64(sy))
				dst.DrawImage(subImage(sheet, ov.Src), op)
			}

			if showTileMasks && len(td.Overlays) > 0 {
				rc.drawMaskDebug(dst, sx, sy, td.Overlays[0].Mask)
			}
		}
	}
}

// drawMaskDebug marks each set neighbor bit with a dot at the matching tile
// edge. Debug aid for authoring transition sheets.
func (rc *renderContext) drawMaskDebug(dst *ebiten.Image, sx, sy float32, mask uint8) {
	const half = tileSizePx / 2
	for i, off := range neighborOffsets {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		px := sx + half + float32(off.X)*(half-4)
		py := sy + half + float32(off.Y)*(half-4)
		vector.DrawFilledCircle(dst, px, py, 2, color.RGBA{0xff, 0x00, 0x00, 0xa0}, false)
	}
}

// drawWater composites the shader overlay onto sea tiles only. The overlay
// is uniform across the viewport; masking to water happens here by blitting
// one overlay sub-rect per sea tile.
func (rc *renderContext) drawWater(dst *ebiten.Image, now time.Time) {
	if !waterEffects {
		return
	}
	viewW, viewH := dst.Bounds().Dx(), dst.Bounds().Dy()
	elapsed := now.Sub(rc.start).Seconds()
	buf, ok := rc.water.render(rc.camX, rc.camY, viewW, viewH, elapsed, waterIntensity)
	if !ok {
		return // flat sea fallback already drawn by the terrain pass
	}

	minT, maxT := rc.visibleTileRange(viewW, viewH)
	for ty := minT.Y; ty <= maxT.Y; ty++ {
		for tx := minT.X; tx <= maxT.X; tx++ {
			tc := tileCoord{tx, ty}
			if rc.world.tiles[tc] != tileSea {
				continue
			}
			ox, oy := tileOrigin(tc)
			sx := ox - rc.camX
			sy := oy - rc.camY
			bx := int(sx) / waterDownsample
			by := int(sy) / waterDownsample
			const bt = tileSizePx / waterDownsample
			src := image.Rect(bx, by, bx+bt, by+bt).Intersect(buf.Bounds())
			if src.Empty() {
				continue
			}
			op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
			op.GeoM.Scale(waterDownsample, waterDownsample)
			op.GeoM.Translate(float64(bx*waterDownsample), float64(by*waterDownsample))
			dst.DrawImage(subImage(buf, src), op)
		}
	}
}

func (rc *renderContext) drawWakes(dst *ebiten.Image, now time.Time) {
	if !showWakes {
		return
	}
	for i := range rc.wakes.effects {
		w := &rc.wakes.effects[i]
		a := w.alpha(now)
		if a <= 0 {
			continue
		}
		if w.Gentle {
			a *= 0.5
		}
		r := w.radius(now)
		cx := w.Origin.X - rc.camX
		cy := w.Origin.Y - rc.camY

		// The arc body leads the swimmer; the opening trails behind it.
		// Deformed by the per-effect rim turbulence.
		var path vector.Path
		const segs = 24
		for s := 0; s <= segs; s++ {
			theta := w.arcTheta(s, segs)
			rr := r + w.rimOffset(theta, now)
			x := float32(cx + math.Cos(theta)*rr)
			y := float32(cy + math.Sin(theta)*rr*0.6) // squash for perspective
			if s == 0 {
				path.MoveTo(x, y)
			} else {
				path.LineTo(x, y)
			}
		}
		op := &vector.StrokeOptions{Width: float32(w.Thickness)}
		vs, is := path.AppendVerticesAndIndicesForStroke(nil, nil, op)
		col := color.RGBA{0xdc, 0xec, 0xf4, uint8(190 * a)}
		for i := range vs {
			vs[i].ColorR = float32(col.R) / 255 * float32(a)
			vs[i].ColorG = float32(col.G) / 255 * float32(a)
			vs[i].ColorB = float32(col.B) / 255 * float32(a)
			vs[i].ColorA = float32(a)
		}
		top := &ebiten.DrawTrianglesOptions{AntiAlias: true}
		dst.DrawTriangles(vs, is, whitePixel(), top)
	}
}

var whiteImg *ebiten.Image

func whitePixel() *ebiten.Image {
	if whiteImg == nil {
		whiteImg = ebiten.NewImage(3, 3)
		whiteImg.Fill(color.White)
	}
	return whiteImg.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// drawBuildings renders foundation floors, walls and doors with fog-of-war
// masking: interiors of enclosed buildings only render for an observer
// inside the same cluster.
func (rc *renderContext) drawBuildings(dst *ebiten.Image) {
	observer := rc.observerCluster()
	for _, f := range rc.world.foundations {
		if f.Destroyed {
			continue
		}
		visible := rc.clusters.isFoundationVisible(&f, observer)
		ox, oy := foundationCellOrigin(f.cell())
		sx := float32(ox - rc.camX)
		sy := float32(oy - rc.camY)

		if visible {
			vector.DrawFilledRect(dst, sx, sy, foundationCellPx, foundationCellPx, color.RGBA{0x8a, 0x6f, 0x52, 0xff}, false)
		} else {
			// Roofed silhouette; the inside stays fogged.
			vector.DrawFilledRect(dst, sx, sy, foundationCellPx, foundationCellPx, color.RGBA{0x4c, 0x42, 0x38, 0xff}, false)
			if rc.clusters.isEntranceWay(f.cell()) {
				vector.DrawFilledRect(dst, sx+foundationCellPx/4, sy+foundationCellPx/2,
					foundationCellPx/2, foundationCellPx/2, color.RGBA{0x2c, 0x26, 0x20, 0xff}, false)
			}
		}
	}

	for _, w := range rc.world.walls {
		if w.Destroyed {
			continue
		}
		rc.drawEdge(dst, cellCoord{w.CellX, w.CellY}, w.Edge, color.RGBA{0x5c, 0x50, 0x44, 0xff})
	}
	for _, d := range rc.world.doors {
		if d.Destroyed {
			continue
		}
		c := color.RGBA{0x96, 0x6a, 0x38, 0xff}
		if d.Open {
			c.A = 0x80
		}
		rc.drawEdge(dst, cellCoord{d.CellX, d.CellY}, d.Edge, c)
	}
}

func (rc *renderContext) drawEdge(dst *ebiten.Image, cell cellCoord, e buildingEdge, c color.RGBA) {
	ox, oy := foundationCellOrigin(cell)
	sx := float32(ox - rc.camX)
	sy := float32(oy - rc.camY)
	const t = 4
	switch e {
	case edgeN:
		vector.DrawFilledRect(dst, sx, sy, foundationCellPx, t, c, false)
	case edgeS:
		vector.DrawFilledRect(dst, sx, sy+foundationCellPx-t, foundationCellPx, t, c, false)
	case edgeW:
		vector.DrawFilledRect(dst, sx, sy, t, foundationCellPx, c, false)
	case edgeE:
		vector.DrawFilledRect(dst, sx+foundationCellPx-t, sy, t, foundationCellPx, c, false)
	}
}

type entityDraw struct {
	snap entitySnapshot
	pos  vec2
	vs   visualState
}

// drawEntities renders every visible entity bottom-up by display Y so
// southern sprites overlap northern ones.
func (rc *renderContext) drawEntities(dst *ebiten.Image, serverNowMs uint64, now time.Time) {
	observer := rc.observerCluster()
	rc.entScratch = rc.world.captureEntities(rc.entScratch)

	draws := rc.drawScratch[:0]
	for i := range rc.entScratch {
		e := &rc.entScratch[i]
		// Entities inside an enclosed building another player cannot see
		// into are fogged along with the interior.
		if e.IsInsideBuilding && observer != rc.clusters.resolveObserverCluster(e.X, e.Y) {
			continue
		}
		pos := rc.knockback.displayPosition(e, serverNowMs, now)
		vs := resolveVisualState(e, rc.localFlagsFor(e), rc.animFrame, serverNowMs)
		if vs.Pose == poseHidden {
			continue
		}
		draws = append(draws, entityDraw{snap: *e, pos: pos, vs: vs})
	}
	sort.Slice(draws, func(i, j int) bool { return draws[i].pos.Y < draws[j].pos.Y })
	rc.drawScratch = draws

	for i := range draws {
		rc.drawEntity(dst, &draws[i], now)
	}
}

func (rc *renderContext) drawEntity(dst *ebiten.Image, d *entityDraw, now time.Time) {
	shake := rc.knockback.shakeOffset(d.snap.ID, now)
	sx := d.pos.X - rc.camX + shake.X - spriteSizePx/2
	sy := d.pos.Y - rc.camY + shake.Y - spriteFootOffset

	// Shadow under the feet; jumpers get a smaller, detached one.
	shadowW := float32(spriteSizePx) * 0.4
	if d.snap.isJumping(rc.world.serverTimeMs) {
		shadowW *= 0.7
	}
	if d.vs.Pose != poseSwim {
		vector.DrawFilledCircle(dst, float32(d.pos.X-rc.camX), float32(d.pos.Y-rc.camY),
			shadowW, color.RGBA{0, 0, 0, 0x50}, true)
	}

	sheet := rc.images.sheet(d.vs.Sheet)
	src := image.Rect(d.vs.Col*spriteSizePx, d.vs.Row*spriteSizePx,
		(d.vs.Col+1)*spriteSizePx, (d.vs.Row+1)*spriteSizePx)

	// Swimmers are clipped at the waterline; the submerged part is not
	// drawn at all and the divider ripples with the water.
	if d.vs.Pose == poseSwim && !d.snap.IsSnorkeling {
		elapsed := now.Sub(rc.start).Seconds()
		cut := int(float64(spriteSizePx)*waterlineFraction + waterlineOffset(d.pos.X, elapsed))
		if cut < 8 {
			cut = 8
		}
		if cut > spriteSizePx {
			cut = spriteSizePx
		}
		src.Max.Y = src.Min.Y + cut
	}

	op := &ebiten.DrawImageOptions{Filter: drawFilter}
	op.GeoM.Translate(sx, sy)
	if d.snap.IsNPC {
		op.ColorScale.Scale(1, 0.92, 0.85, 1)
	}
	dst.DrawImage(subImage(sheet, src), op)

	// Hit flash: additive white pass fading over the flash window.
	if f := rc.knockback.flashFactor(d.snap.ID, now); f > 0 {
		fop := &ebiten.DrawImageOptions{Filter: drawFilter, Blend: ebiten.BlendLighter}
		fop.GeoM.Translate(sx, sy)
		fop.ColorScale.Scale(float32(f), float32(f), float32(f), float32(f))
		dst.DrawImage(subImage(sheet, src), fop)
	}

	if showNametags && d.snap.Name != "" && !d.snap.IsCorpse {
		rc.drawNametag(dst, d, sx, sy)
	}
}

func (rc *renderContext) drawNametag(dst *ebiten.Image, d *entityDraw, sx, sy float64) {
	name := displayName(d.snap.Name)
	tx := int(sx) + spriteSizePx/2 - len(name)*3
	ty := int(sy) - (nametagOffset - spriteFootOffset) - 14
	if d.snap.PvPEnabled {
		vector.DrawFilledCircle(dst, float32(tx-6), float32(ty+8), 3, color.RGBA{0xd8, 0x30, 0x30, 0xff}, true)
	}
	ebitenutil.DebugPrintAt(dst, name, tx, ty)
}

func (rc *renderContext) drawExplosions(dst *ebiten.Image, now time.Time) {
	rc.explosions.render(dst, rc.camX, rc.camY, now)
}

// entityAt returns the topmost entity whose sprite rect contains the given
// screen position, for hover queries.
func (rc *renderContext) entityAt(screenX, screenY float64) (EntityID, bool) {
	wx := screenX + rc.camX
	wy := screenY + rc.camY
	for i := len(rc.drawScratch) - 1; i >= 0; i-- {
		d := &rc.drawScratch[i]
		x0 := d.pos.X - spriteSizePx/2
		y0 := d.pos.Y - spriteFootOffset
		if wx >= x0 && wx < x0+spriteSizePx && wy >= y0 && wy < y0+spriteSizePx {
			return d.snap.ID, true
		}
	}
	return 0, false
}
