// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

// airlock-probe is a diagnostic tool for ship connectivity. It logs in
// with the ship's +code, opens a channel, and then either runs a
// one-shot operation (--poke, --scry) or subscribes to an agent and
// prints every diff payload as a line of JSON until interrupted.
//
// Ship coordinates come from a ship file (see lib/shipfile), named by
// --shipfile or the AIRLOCK_SHIPFILE environment variable:
//
//	url: http://localhost:8080
//	code-file: ~/.urbit/zod.code
//
// Example session:
//
//	airlock-probe --shipfile zod.yaml --app graph-store --path /updates
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/urbit-foundation/airlock/airlock"
	"github.com/urbit-foundation/airlock/lib/ref"
	"github.com/urbit-foundation/airlock/lib/shipfile"
	"github.com/urbit-foundation/airlock/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		shipFileFlag string
		appFlag      string
		pathFlag     string
		pokeJSON     string
		pokeMark     string
		scryPath     string
		scryMark     string
		interval     time.Duration
		logLevel     string
	)

	flagSet := pflag.NewFlagSet("airlock-probe", pflag.ContinueOnError)
	flagSet.StringVar(&shipFileFlag, "shipfile", "", "path to the ship file (default: $AIRLOCK_SHIPFILE)")
	flagSet.StringVar(&appFlag, "app", "", "agent to talk to")
	flagSet.StringVar(&pathFlag, "path", "", "subscription path on the agent")
	flagSet.StringVar(&pokeJSON, "poke", "", "one-shot: poke the agent with this JSON payload and exit")
	flagSet.StringVar(&pokeMark, "mark", "json", "mark for --poke payloads")
	flagSet.StringVar(&scryPath, "scry", "", "one-shot: scry this path on the agent and print the result")
	flagSet.StringVar(&scryMark, "scry-mark", "json", "mark for --scry reads")
	flagSet.DurationVar(&interval, "interval", 100*time.Millisecond, "event poll interval")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing, same as the other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("airlock-probe")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}
	if appFlag == "" {
		return errors.New("--app is required")
	}

	app, err := ref.ParseApp(appFlag)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))

	shipFilePath, err := shipfile.Path(shipFileFlag)
	if err != nil {
		return err
	}
	shipFile, err := shipfile.Load(shipFilePath)
	if err != nil {
		return err
	}
	code, err := shipFile.ReadCode()
	if err != nil {
		return err
	}
	defer code.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := airlock.NewClient(airlock.ClientConfig{
		ShipURL: shipFile.URL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	session, err := client.Login(ctx, code)
	if err != nil {
		return err
	}
	defer session.Close()
	code.Close()

	logger.Info("authenticated", "ship", session.Ship().Sigged())

	if scryPath != "" {
		return runScry(ctx, session, app, scryPath, scryMark)
	}

	channel, err := session.OpenChannel(ctx)
	if err != nil {
		return err
	}
	defer channel.Delete(context.WithoutCancel(ctx))

	if pokeJSON != "" {
		return runPoke(ctx, channel, app, pokeMark, pokeJSON)
	}
	if pathFlag == "" {
		return errors.New("--path is required unless using --poke or --scry")
	}
	return watch(ctx, channel, app, pathFlag, interval)
}

// runScry performs one scry read and prints the result.
func runScry(ctx context.Context, session *airlock.Session, app ref.App, rawPath, mark string) error {
	path, err := ref.ParseSubscriptionPath(rawPath)
	if err != nil {
		return err
	}
	result, err := session.Scry(ctx, app, path, mark)
	if err != nil {
		return err
	}
	fmt.Println(string(result))
	return nil
}

// runPoke sends one poke. The payload must be valid JSON; it is
// forwarded verbatim.
func runPoke(ctx context.Context, channel *airlock.Channel, app ref.App, mark, payload string) error {
	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("--poke payload is not valid JSON")
	}
	if err := channel.Poke(ctx, app, mark, json.RawMessage(payload)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "poked %s with mark %s\n", app, mark)
	return nil
}

// watch subscribes and prints diff payloads until the context is
// cancelled or the event stream is lost.
func watch(ctx context.Context, channel *airlock.Channel, app ref.App, rawPath string, interval time.Duration) error {
	path, err := ref.ParseSubscriptionPath(rawPath)
	if err != nil {
		return err
	}
	if _, err := channel.Subscribe(ctx, app, path); err != nil {
		return err
	}
	subscription := channel.FindSubscription(app, path)

	fmt.Fprintf(os.Stderr, "watching %s%s on channel %s\n", app, path, channel.UID())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-channel.StreamDone():
			if err := channel.StreamErr(); err != nil {
				return err
			}
			return errors.New("ship closed the event stream")
		case <-ticker.C:
			channel.Dispatch()
			for {
				payload, ok := subscription.PopMessage()
				if !ok {
					break
				}
				fmt.Println(payload)
			}
		}
	}
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Ship connectivity probe — log in, open a channel, watch an agent.

By default, subscribes to --app at --path and prints each diff payload
as a line of JSON. With --poke or --scry, performs the one operation
and exits.

Usage:
  airlock-probe --shipfile FILE --app APP --path PATH
  airlock-probe --shipfile FILE --app APP --poke JSON [--mark MARK]
  airlock-probe --shipfile FILE --app APP --scry PATH [--scry-mark MARK]

Flags:
%s`, flagSet.FlagUsages())
}
