package main

import (
	"context"
	"time"

	client "github.com/hugolgst/rich-go/client"
)

func initDiscordRPC(ctx context.Context, character string) {
	if err := client.Login("1406171210240360508"); err != nil {
		logError("discord rpc login: %v", err)
		return
	}
	now := time.Now()
	details := "Surviving the ice"
	if character != "" {
		details = "Playing as " + displayName(character)
	}
	if err := client.SetActivity(client.Activity{
		State:   "gofrost",
		Details: details,
		Timestamps: &client.Timestamps{
			Start: &now,
		},
	}); err != nil {
		logError("discord rpc activity: %v", err)
	}
	go func() {
		<-ctx.Done()
		client.Logout()
	}()
}
