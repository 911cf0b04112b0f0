// Command wsecho is a minimal WebSocket echo server built on package ws,
// grounded on tzrikka-omdient's cmd/omdient (urfave/cli/v3 flag wiring,
// zerolog console logging for --dev).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/coregx/wsengine/control"
	"github.com/coregx/wsengine/ws"
)

// configFilePath is the optional TOML file consulted for flags not given
// on the command line or in the environment, matching tzrikka-omdient's
// etcd.Flags/thrippy.Flags altsrc wiring.
const configFilePath = altsrc.StringSourcer("/etc/wsecho/config.toml")

func main() {
	cmd := &cli.Command{
		Name:   "wsecho",
		Usage:  "Echo every inbound WebSocket message back to its sender",
		Flags:  flags(),
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Value:   ":8080",
			Usage:   "address to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("WSECHO_ADDR")),
		},
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "pretty-print logs to stderr instead of JSON",
		},
		&cli.DurationFlag{
			Name:  "close-wait",
			Value: 5 * time.Second,
			Usage: "how long a close handshake waits for the peer's echo before forcing teardown",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("WSECHO_CLOSE_WAIT"),
				toml.TOML("close_wait", configFilePath),
			),
		},
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("dev") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := control.NewConfigStore()
	store.SetCloseWaitMillis(int(cmd.Duration("close-wait").Milliseconds()))

	// A SIGHUP re-reads WSECHO_CLOSE_WAIT from the environment and pushes
	// it to the store, letting an operator reload the close-wait bound
	// without restarting the listener.
	control.RegisterReloadHook(func() {
		if v := os.Getenv("WSECHO_CLOSE_WAIT"); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				store.SetCloseWaitMillis(int(d.Milliseconds()))
				log.Info().Dur("close_wait", d).Msg("wsecho: reloaded close-wait")
			}
		}
	})
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			control.TriggerHotReload()
		}
	}()

	addr := cmd.String("addr")
	log.Info().Str("addr", addr).Msg("wsecho: listening")

	err := ws.Serve(ctx, addr, nil, echoHandler,
		ws.WithCloseWait(cmd.Duration("close-wait")),
		ws.WithConfigStore(store),
		ws.WithEventLogger(logEvent),
	)
	if err != nil {
		log.Error().Err(err).Msg("wsecho: serve exited")
		return err
	}
	return nil
}

func echoHandler(c *ws.Connection) {
	ctx := context.Background()
	for {
		msgType, data, err := c.GetMessage(ctx)
		if err != nil {
			return
		}
		if err := c.SendMessage(ctx, msgType, data); err != nil {
			return
		}
	}
}

func logEvent(event string, c *ws.Connection, detail string) {
	ev := log.Info().Str("event", event).Uint64("conn_id", c.ID()).Str("short_id", c.ShortID())
	if detail != "" {
		ev = ev.Str("detail", detail)
	}
	if event == "close" {
		for k, v := range c.Stats() {
			ev = ev.Uint64(k, v)
		}
	}
	ev.Msg("wsecho")
}
