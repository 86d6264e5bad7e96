// Command frontstation serves the planner to ground-station clients
// over newline-delimited JSON on TCP.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/elektrokombinacija/firefront-research/internal/planner"
	"github.com/elektrokombinacija/firefront-research/internal/station"
	"github.com/elektrokombinacija/firefront-research/internal/store"
)

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:8500", "TCP listen address")
	configFile := flag.String("config", "", "Default planner configuration JSON file")
	dbFile := flag.String("db", "", "SQLite episode database (empty = no persistence)")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: frontstation -config <file> [-listen <addr>] [-db <file>]")
		os.Exit(2)
	}

	rawConf, err := os.ReadFile(*configFile)
	if err != nil {
		log.Fatalf("reading configuration: %v", err)
	}
	conf, err := planner.ParseConfig(rawConf)
	if err != nil {
		log.Fatalf("parsing configuration: %v", err)
	}

	var db *store.Store
	if *dbFile != "" {
		db, err = store.Open(*dbFile)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		defer db.Close()
	}

	srv, err := station.Listen(*listenAddr, conf, db)
	if err != nil {
		log.Fatalf("starting station: %v", err)
	}
	srv.Start()
	log.Printf("station: listening on %s", srv.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("station: shutting down")
	srv.Stop()
}
