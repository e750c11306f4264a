package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
	"github.com/joho/godotenv"

	"github.com/armankhan8150/taskscape-front/internal/backend"
	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/realtime"
	"github.com/armankhan8150/taskscape-front/internal/sync"
	"github.com/armankhan8150/taskscape-front/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("taskscape %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// optional; settings come from the environment when absent
	godotenv.Load()
	flag.Parse()
	defer glog.Flush()

	ctx := context.Background()

	gw, feed, cleanup, err := buildGateway(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	client := sync.NewClient(ctx, gw, feed)
	defer client.Close()

	app := ui.NewApp(client)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// buildGateway selects remote mode when TASKSCAPE_API_URL is set, otherwise
// the standalone sqlite backend
func buildGateway(ctx context.Context) (gateway.Gateway, realtime.Feed, func(), error) {
	if apiURL := os.Getenv("TASKSCAPE_API_URL"); apiURL != "" {
		token := os.Getenv("TASKSCAPE_API_TOKEN")
		gw, err := gateway.NewHTTPGateway(apiURL, token)
		if err != nil {
			return nil, nil, nil, err
		}

		var feed realtime.Feed
		if wsURL := os.Getenv("TASKSCAPE_WS_URL"); wsURL != "" {
			feed = realtime.NewWebsocketFeed(ctx, wsURL, token, nil)
		}
		glog.Infof("[main]remote mode: %s", apiURL)
		return gw, feed, func() {}, nil
	}

	db, err := backend.Open(os.Getenv("TASKSCAPE_DB_PATH"))
	if err != nil {
		return nil, nil, nil, err
	}

	feed := realtime.NewLocalFeed()
	gw, err := backend.NewLocalGateway(db, feed, os.Getenv("TASKSCAPE_USER_NAME"))
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	glog.Infof("[main]standalone mode")
	return gw, feed, func() { db.Close() }, nil
}
