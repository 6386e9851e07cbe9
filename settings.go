package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	dark "github.com/thiagokokada/dark-mode-go"
)

type Settings struct {
	Scale           int     `json:"scale"`
	Linear          bool    `json:"linear"`
	Vsync           bool    `json:"vsync"`
	SmoothMoving    bool    `json:"smoothMoving"`
	ShowNametags    bool    `json:"showNametags"`
	ShowWakes       bool    `json:"showWakes"`
	WaterEffects    bool    `json:"waterEffects"`
	WaterIntensity  float64 `json:"waterIntensity"`
	ShowTileMasks   bool    `json:"showTileMasks"`
	PrecacheAssets  bool    `json:"precacheAssets"`
	DiscordPresence bool    `json:"discordPresence"`
	DarkUI          *bool   `json:"darkUI,omitempty"`
	LastCharacter   string  `json:"lastCharacter"`
}

var (
	scale           = 2
	linear          bool
	vsync           = true
	smoothMoving    = true
	showNametags    = true
	showWakes       = true
	waterEffects    = true
	waterIntensity  = 0.8
	showTileMasks   bool
	precacheAssets  = true
	discordPresence bool
	darkUI          bool
	lastCharacter   string

	drawFilter = ebiten.FilterNearest

	settingsDirty bool
)

func loadSettings() bool {
	// Follow the OS preference until the user picks a theme explicitly.
	if isDark, err := dark.IsDarkMode(); err == nil {
		darkUI = isDark
	}

	path := filepath.Join(baseDir, "settings.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return false
	}
	if s.Scale > 0 {
		scale = s.Scale
	}
	linear = s.Linear
	vsync = s.Vsync
	smoothMoving = s.SmoothMoving
	showNametags = s.ShowNametags
	showWakes = s.ShowWakes
	waterEffects = s.WaterEffects
	waterIntensity = s.WaterIntensity
	if waterIntensity <= 0 {
		waterIntensity = 0.8
	}
	showTileMasks = s.ShowTileMasks
	precacheAssets = s.PrecacheAssets
	discordPresence = s.DiscordPresence
	if s.DarkUI != nil {
		darkUI = *s.DarkUI
	}
	lastCharacter = s.LastCharacter
	return true
}

func applySettings() {
	if linear {
		drawFilter = ebiten.FilterLinear
	} else {
		drawFilter = ebiten.FilterNearest
	}
	ebiten.SetVsyncEnabled(vsync)
	ebiten.SetWindowSize(gameAreaSizeX*scale, gameAreaSizeY*scale)
}

func saveSettings() {
	d := darkUI
	s := Settings{
		Scale:           scale,
		Linear:          linear,
		Vsync:           vsync,
		SmoothMoving:    smoothMoving,
		ShowNametags:    showNametags,
		ShowWakes:       showWakes,
		WaterEffects:    waterEffects,
		WaterIntensity:  waterIntensity,
		ShowTileMasks:   showTileMasks,
		PrecacheAssets:  precacheAssets,
		DiscordPresence: discordPresence,
		DarkUI:          &d,
		LastCharacter:   lastCharacter,
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Printf("save settings: %v", err)
		return
	}
	path := filepath.Join(baseDir, "settings.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("save settings: %v", err)
	}
	settingsDirty = false
}
