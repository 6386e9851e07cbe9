package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/twofish"
	"golang.org/x/time/rate"
)

// Subscription feed. The server streams table-row updates as JSON messages
// over a websocket; every update is queued as a closure and applied to the
// world by the game loop, never from this goroutine.

const (
	feedDialTimeout    = 10 * time.Second
	feedReconnectDelay = 3 * time.Second
	feedChallengeSize  = 16
)

type feedClient struct {
	rc      *renderContext
	host    string
	account string
	pass    string

	conn *websocket.Conn

	// rec, when set, captures every inbound message for later replay.
	rec *feedRecorder

	// Outgoing input messages are throttled; the server drops clients
	// that flood faster than its tick rate anyway.
	sendLimit *rate.Limiter
}

func newFeedClient(rc *renderContext, host, account, pass string) *feedClient {
	return &feedClient{
		rc:        rc,
		host:      host,
		account:   account,
		pass:      pass,
		sendLimit: rate.NewLimiter(rate.Limit(30), 10),
	}
}

// run dials and pumps the feed until ctx ends, reconnecting on any error.
func (f *feedClient) run(ctx context.Context) {
	for ctx.Err() == nil {
		if err := f.connect(ctx); err != nil {
			logError("feed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(feedReconnectDelay):
		}
	}
}

func (f *feedClient) connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: f.host, Path: "/ws"}
	dialer := websocket.Dialer{HandshakeTimeout: feedDialTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()
	f.conn = conn

	if err := f.handshake(conn); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	addMessage("connected to " + f.host)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		logDebugFrame("recv", data)
		if f.rec != nil {
			f.rec.record(data)
		}
		if err := f.handleMessage(data); err != nil {
			logError("feed message: %v", err)
		}
	}
}

// handshake answers the server's challenge: the 16-byte nonce comes back
// encrypted with a Twofish key derived from the account credentials,
// followed by the account name in clear.
func (f *feedClient) handshake(conn *websocket.Conn) error {
	_, challenge, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	if len(challenge) != feedChallengeSize {
		return fmt.Errorf("challenge length %d", len(challenge))
	}
	block, err := twofish.NewCipher(deriveFeedKey(f.account, f.pass))
	if err != nil {
		return err
	}
	var proof [feedChallengeSize]byte
	block.Encrypt(proof[:], challenge)

	hello, err := json.Marshal(struct {
		Account string `json:"account"`
		Proof   []byte `json:"proof"`
	}{f.account, proof[:]})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, hello)
}

func deriveFeedKey(account, pass string) []byte {
	sum := sha256.Sum256([]byte(account + ":" + pass))
	return sum[:]
}

// sendInput ships one client action to the server, rate limited.
func (f *feedClient) sendInput(kind string, payload any) error {
	if f.conn == nil {
		return fmt.Errorf("not connected")
	}
	if !f.sendLimit.Allow() {
		return nil // silently coalesced; the next tick resends state anyway
	}
	msg, err := json.Marshal(struct {
		Type    string `json:"type"`
		Payload any    `json:"payload,omitempty"`
	}{kind, payload})
	if err != nil {
		return err
	}
	return f.conn.WriteMessage(websocket.TextMessage, msg)
}

// sendPlayerInput ships a local action upstream. Replay sessions have no
// feed; the action still applies locally for prediction either way.
func (rc *renderContext) sendPlayerInput(kind string, payload any) {
	if rc.feed == nil {
		return
	}
	if err := rc.feed.sendInput(kind, payload); err != nil {
		logDebug("send %s: %v", kind, err)
	}
}

type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wireEntity struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Direction  string  `json:"direction"`
	Dead       bool    `json:"is_dead"`
	KnockedOut bool    `json:"is_knocked_out"`
	Crouching  bool    `json:"is_crouching"`
	Sprinting  bool    `json:"is_sprinting"`
	OnWater    bool    `json:"is_on_water"`
	Snorkeling bool    `json:"is_snorkeling"`
	Aiming     bool    `json:"is_aiming_throw"`
	Inside     bool    `json:"is_inside_building"`
	Corpse     bool    `json:"is_corpse"`
	NPC        bool    `json:"is_npc"`
	PvP        bool    `json:"pvp_enabled"`
	LastHitMs  uint64  `json:"last_hit_time"`
	JumpStart  uint64  `json:"jump_start_time"`
	Consuming  string  `json:"consuming"`
}

func (w *wireEntity) snapshot() entitySnapshot {
	e := entitySnapshot{
		ID:               EntityID(w.ID),
		Name:             w.Name,
		X:                w.X,
		Y:                w.Y,
		Facing:           parseFacing(w.Direction),
		IsDead:           w.Dead,
		IsKnockedOut:     w.KnockedOut,
		IsCrouching:      w.Crouching,
		IsSprinting:      w.Sprinting,
		IsOnWater:        w.OnWater,
		IsSnorkeling:     w.Snorkeling,
		IsAimingThrow:    w.Aiming,
		IsInsideBuilding: w.Inside,
		IsCorpse:         w.Corpse,
		IsNPC:            w.NPC,
		PvPEnabled:       w.PvP,
		LastHitMs:        w.LastHitMs,
		JumpStartMs:      w.JumpStart,
	}
	switch w.Consuming {
	case "drink":
		e.Consumable = consumeDrink
	case "bandage":
		e.Consumable = consumeBandage
	}
	return e
}

type wireTile struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Type string `json:"tile_type"`
}

func parseTileType(s string) tileType {
	switch s {
	case "grass":
		return tileGrass
	case "sand":
		return tileSand
	case "dirt":
		return tileDirt
	case "sea":
		return tileSea
	case "snow":
		return tileSnow
	case "rock":
		return tileRock
	}
	return tileEmpty
}

type wireFoundation struct {
	ID        uint64 `json:"id"`
	CellX     int    `json:"cell_x"`
	CellY     int    `json:"cell_y"`
	Destroyed bool   `json:"destroyed"`
}

type wireEdgePiece struct {
	ID        uint64 `json:"id"`
	CellX     int    `json:"cell_x"`
	CellY     int    `json:"cell_y"`
	Edge      uint8  `json:"edge"`
	Destroyed bool   `json:"destroyed"`
	Open      bool   `json:"open"`
}

type wireExplosion struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	DamageRadius float64 `json:"damage_radius"`
	Tier         string  `json:"tier"`
}

type wireID struct {
	ID uint64 `json:"id"`
}

func (f *feedClient) handleMessage(data []byte) error {
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	rc := f.rc
	switch msg.Type {
	case "server_time":
		var t struct {
			Ms uint64 `json:"ms"`
		}
		if err := json.Unmarshal(msg.Data, &t); err != nil {
			return err
		}
		rc.events.push(func(*worldState) { rc.syncServerClock(t.Ms) })
	case "identity":
		var id wireID
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			return err
		}
		rc.events.push(func(w *worldState) { w.localPlayer = EntityID(id.ID) })
	case "player", "corpse":
		var we wireEntity
		if err := json.Unmarshal(msg.Data, &we); err != nil {
			return err
		}
		we.Corpse = we.Corpse || msg.Type == "corpse"
		snap := we.snapshot()
		rc.events.push(func(w *worldState) { w.applyEntityUpsert(snap) })
	case "player_delete", "corpse_delete":
		var id wireID
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			return err
		}
		rc.events.push(func(w *worldState) { w.applyEntityDelete(EntityID(id.ID)) })
	case "tile":
		var wt wireTile
		if err := json.Unmarshal(msg.Data, &wt); err != nil {
			return err
		}
		rc.events.push(func(w *worldState) { w.applyTile(tileCoord{wt.X, wt.Y}, parseTileType(wt.Type)) })
	case "foundation":
		var wf wireFoundation
		if err := json.Unmarshal(msg.Data, &wf); err != nil {
			return err
		}
		fc := foundationCell{ID: wf.ID, CellX: wf.CellX, CellY: wf.CellY, Destroyed: wf.Destroyed}
		rc.events.push(func(w *worldState) { w.applyFoundation(fc) })
	case "foundation_delete":
		var id wireID
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			return err
		}
		rc.events.push(func(w *worldState) { w.applyFoundationDelete(id.ID) })
	case "wall":
		var wp wireEdgePiece
		if err := json.Unmarshal(msg.Data, &wp); err != nil {
			return err
		}
		wc := wallCell{ID: wp.ID, CellX: wp.CellX, CellY: wp.CellY, Edge: buildingEdge(wp.Edge), Destroyed: wp.Destroyed}
		rc.events.push(func(w *worldState) { w.applyWall(wc) })
	case "wall_delete":
		var id wireID
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			return err
		}
		rc.events.push(func(w *worldState) { w.applyWallDelete(id.ID) })
	case "door":
		var wp wireEdgePiece
		if err := json.Unmarshal(msg.Data, &wp); err != nil {
			return err
		}
		dc := doorCell{ID: wp.ID, CellX: wp.CellX, CellY: wp.CellY, Edge: buildingEdge(wp.Edge), Destroyed: wp.Destroyed, Open: wp.Open}
		rc.events.push(func(w *worldState) { w.applyDoor(dc) })
	case "door_delete":
		var id wireID
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			return err
		}
		rc.events.push(func(w *worldState) { w.applyDoorDelete(id.ID) })
	case "explosion":
		var we wireExplosion
		if err := json.Unmarshal(msg.Data, &we); err != nil {
			return err
		}
		tier := tierBabushka
		if we.Tier == "matriarch" {
			tier = tierMatriarch
		}
		rc.events.push(func(*worldState) {
			rc.explosions.trigger(vec2{we.X, we.Y}, we.DamageRadius, tier)
		})
	case "dodge_roll":
		var id wireID
		if err := json.Unmarshal(msg.Data, &id); err != nil {
			return err
		}
		rc.events.push(func(*worldState) { rc.startRoll(EntityID(id.ID), time.Now()) })
	default:
		logDebug("unhandled feed message type %q", msg.Type)
	}
	return nil
}
