package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hako/durafmt"
)

// HUD: a status line and a short scrolling message log. Messages come from
// anywhere (logError included) and expire on their own.

const (
	hudMessageTTL = 8 * time.Second
	hudMessageMax = 6
)

type hudMessage struct {
	text string
	at   time.Time
}

var (
	hudMu       sync.Mutex
	hudMessages []hudMessage
	hudStart    = time.Now()
)

func addMessage(s string) {
	hudMu.Lock()
	defer hudMu.Unlock()
	hudMessages = append(hudMessages, hudMessage{text: s, at: time.Now()})
	if len(hudMessages) > hudMessageMax {
		hudMessages = hudMessages[len(hudMessages)-hudMessageMax:]
	}
}

func drawHUD(screen *ebiten.Image, rc *renderContext) {
	uptime := durafmt.Parse(time.Since(hudStart).Round(time.Second)).LimitFirstN(2)
	status := fmt.Sprintf("%.0f fps  %s entities  up %s",
		ebiten.ActualFPS(),
		humanize.Comma(int64(len(rc.world.entities))),
		uptime)
	ebitenutil.DebugPrintAt(screen, status, 4, 4)
	ebitenutil.DebugPrintAt(screen, rc.images.stats(), 4, 18)

	if rc.hoverOK {
		if e, ok := rc.world.entities[rc.hoverID]; ok && e.Name != "" {
			ebitenutil.DebugPrintAt(screen, displayName(e.Name), 4, 32)
		}
	}

	hudMu.Lock()
	now := time.Now()
	kept := hudMessages[:0]
	for _, m := range hudMessages {
		if now.Sub(m.at) < hudMessageTTL {
			kept = append(kept, m)
		}
	}
	hudMessages = kept
	y := gameAreaSizeY - 16*len(hudMessages) - 4
	for _, m := range hudMessages {
		ebitenutil.DebugPrintAt(screen, m.text, 4, y)
		y += 16
	}
	hudMu.Unlock()
}
