// Package main is a small command line client for the liftlog API. Workout
// edits go through a coordinator session, the same way the web client does.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/apiclient"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const usage = `usage: liftctl [flags] <command> [args]

commands:
  login <username>                         password from LIFTCTL_PASSWORD
  logout
  selections
  workouts
  new <title> [templateID]
  show <workoutID>
  delete <workoutID>
  add-exercise <workoutID> <selectionID> [position]
  delete-exercise <workoutID> <exerciseID>
  note <workoutID> <exerciseID> [note]
  add-set <workoutID> <exerciseID>
  set <workoutID> <setID> <reps> <weight>
  delete-set <workoutID> <setID>
  complete <workoutID>
  sentiment <workoutID> <good|medium|bad>
  tracked
  track <selectionID>
  untrack <selectionID>
  progression [range] [selectionID]

flags:
`

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("LIFTCTL_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:9000"
	}

	serverURL := flag.String("server", defaultServer, "liftlog api base url")
	tokenFile := flag.String("token-file", defaultTokenFile(), "file the session token is kept in")
	timeout := flag.Duration("timeout", 15*time.Second, "timeout for the whole command")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		log.SetLevel(log.TraceLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	client, err := apiclient.NewClient(*serverURL, nil)
	if err != nil {
		log.Fatalf("new client: %s", err)
	}
	if token, err := os.ReadFile(*tokenFile); err == nil {
		client.SetToken(strings.TrimSpace(string(token)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cli := &cli{
		client:    client,
		tokenFile: *tokenFile,
		out:       os.Stdout,
	}
	if err := cli.run(ctx, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		if errors.Is(err, apiclient.ErrNotLoggedIn) {
			fmt.Fprintln(os.Stderr, "not logged in, run: liftctl login <username>")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".liftctl_token"
	}
	return filepath.Join(home, ".liftctl_token")
}
