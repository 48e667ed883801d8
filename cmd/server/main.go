// Command server runs the raidbot webhook server.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log"

	"github.com/hikoguma/raidbot/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("raidbot: %v", err)
	}
}
