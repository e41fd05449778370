// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"comail.io/go/colog"
	"golang.org/x/net/http2"

	"github.com/ninibe/bigduration"
	"github.com/ninibe/streamrelay"
	"github.com/ninibe/streamrelay/broker"
	"github.com/ninibe/streamrelay/httpstatus"
)

var (
	debug    = flag.Bool("debug", false, "Start on debug mode")
	logLevel = flag.String("loglevel", "info", "Logging level")
	dataDir  = flag.String("dir", "./data", "Data folder")

	adminListen  = flag.String("admin-listen", ":7300", "Admin (create/delete topic) listen address")
	pubListen    = flag.String("pub-listen", ":7301", "Publisher listen address")
	subListen    = flag.String("sub-listen", ":7302", "Subscriber listen address")
	statusListen = flag.String("status-listen", ":7380", "Read-only HTTP status listen address, empty to disable")

	numMsgPerFile = flag.Uint64("num-msg-per-file", streamrelay.DefaultNumMsgPerFile, "Default number of messages per segment file")
	numSegments   = flag.Uint64("num-segments", streamrelay.DefaultNumSegments, "Default number of segment directories per topic")

	flushInterval        = flag.String("flush-interval", "2s", "Interval at which a live writer's watermark is republished")
	readerUpdateInterval = flag.String("reader-update-interval", "200ms", "Minimum spacing between a reader's manifest refreshes")
)

func main() {
	flag.Parse()
	colog.Register()

	ll, err := colog.ParseLevel(*logLevel)
	fatalOn(err)
	colog.SetMinLevel(ll)

	if *debug {
		colog.SetFlags(log.LstdFlags | log.Lshortfile)
		colog.SetMinLevel(colog.LTrace)
	}

	fi, err := bigduration.ParseBigDuration(*flushInterval)
	fatalOn(err)
	rui, err := bigduration.ParseBigDuration(*readerUpdateInterval)
	fatalOn(err)

	b, err := streamrelay.NewBroker(*dataDir)
	fatalOn(err)

	admin := broker.NewAcceptor("admin", broker.NewAdmin(b, *numMsgPerFile, *numSegments))
	pub := broker.NewAcceptor("publisher", broker.NewPublisher(b, fi.Duration()))
	sub := broker.NewAcceptor("subscriber", broker.NewSubscriber(b, rui.Duration()))

	go func() { fatalOnServe("admin", admin.ListenAndServe(*adminListen)) }()
	go func() { fatalOnServe("publisher", pub.ListenAndServe(*pubListen)) }()
	go func() { fatalOnServe("subscriber", sub.ListenAndServe(*subListen)) }()

	if *statusListen != "" {
		go serveStatus(b, *statusListen)
	}

	log.Printf("info: data dir on %q", *dataDir)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("info: shutting down")
	admin.Stop()
	pub.Stop()
	sub.Stop()
}

func serveStatus(b *streamrelay.Broker, addr string) {
	var server http.Server
	server.Addr = addr
	server.Handler = httpstatus.NewHandler(b)
	fatalOn(http2.ConfigureServer(&server, nil))

	log.Printf("info: status listening on %q", addr)
	log.Printf("alert: %s", server.ListenAndServe())
}

func fatalOnServe(name string, err error) {
	if err != nil {
		log.Fatalf("alert: %s acceptor failed: %s\n", name, err)
	}
}

func fatalOn(err error) {
	if err != nil {
		log.Fatalf("alert: %s\n", err)
	}
}
