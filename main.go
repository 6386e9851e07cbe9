package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/sqweek/dialog"
)

var (
	baseDir string
	dataDir string

	host    string
	account string
	pass    string

	silent bool
)

func main() {
	flag.StringVar(&host, "host", "play.gofrost.net:4196", "game server host:port")
	flag.StringVar(&account, "account", "", "account name")
	flag.StringVar(&pass, "pass", "", "account password")
	replay := flag.String("replay", "", "play back a recorded .pcap session instead of connecting")
	replaySpeed := flag.Float64("replay-speed", 1.0, "replay speed multiplier")
	record := flag.String("record", "", "record the live session to a .pcap file")
	debugFlag := flag.Bool("debug", false, "verbose/debug logging")
	flag.BoolVar(&silent, "silent", false, "suppress in-game error messages")
	flag.Parse()

	baseDir = os.Getenv("PWD")
	if baseDir == "" {
		var err error
		if baseDir, err = os.Getwd(); err != nil {
			log.Fatalf("get working directory: %v", err)
		}
	}
	dataDir = filepath.Join(baseDir, "data")

	loadSettings()
	setupLogging(*debugFlag)
	defer func() {
		if r := recover(); r != nil {
			logError("panic: %v\n%s", r, debug.Stack())
			dialog.Message("gofrost crashed: %v", r).Title("gofrost").Error()
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rc := newRenderContext()

	if precacheAssets {
		go rc.images.precache(ctx, defaultAutotileRules)
	}

	switch {
	case *replay != "":
		go func() {
			if err := replayCapture(ctx, rc, *replay, *replaySpeed); err != nil {
				logError("replay: %v", err)
				dialog.Message("could not replay %s: %v", *replay, err).Title("gofrost").Error()
				cancel()
			}
		}()
	default:
		feed := newFeedClient(rc, host, account, pass)
		rc.feed = feed
		if *record != "" {
			rec, err := newFeedRecorder(*record)
			if err != nil {
				log.Fatalf("open capture file: %v", err)
			}
			defer rec.close()
			feed.rec = rec
		}
		go feed.run(ctx)
	}

	if discordPresence {
		initDiscordRPC(ctx, lastCharacter)
	}

	addMessage("Starting...")
	if err := runGame(ctx, rc); err != nil {
		logError("game loop: %v", err)
	}
	cancel()
	if settingsDirty {
		saveSettings()
	}
}
