// The hasreceiver program reads Galileo HAS E6-B pages as JSON lines on
// standard input and writes decoded HAS Correction Records as JSON lines
// to standard output. It's intended to run downstream of whatever
// signal-processing front-end demodulates E6-B pages - that front-end,
// like the PVT consumer reading this program's stdout, is out of scope
// (spec.md §1); this program only wires together the page-accumulation,
// reconstruction, parsing and ambient (config/logging/monitor/sweep)
// components into one process, the way rtcmlogger.go wires its pipeline.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/goblimey/go-tools/dailylogger"

	"github.com/jwen15/DM-gnss-sdr/internal/config"
	"github.com/jwen15/DM-gnss-sdr/internal/monitor"
	"github.com/jwen15/DM-gnss-sdr/internal/page"
	"github.com/jwen15/DM-gnss-sdr/internal/rscodec"
	"github.com/jwen15/DM-gnss-sdr/internal/sweep"
	"github.com/jwen15/DM-gnss-sdr/receiver"
)

// inboundPage is the JSON shape accepted on stdin: a Page plus the
// PRN/tow metadata the nav-data monitor needs but the Page data model
// itself doesn't carry (spec.md §3 vs. §4.5/§6).
type inboundPage struct {
	page.Page
	PRN                  uint8  `json:"prn"`
	TowAtCurrentSymbolMs uint32 `json:"towAtCurrentSymbolMs"`
}

func main() {
	configPath := flag.String("config", "./hasreceiver.json", "path to the JSON config file")
	flag.Parse()

	eventLog := log.New(dailylogger.New(".", "hasreceiver.", ".log"), "hasreceiver", log.LstdFlags|log.Lshortfile)

	cfg, err := config.FromFile(*configPath)
	if err != nil {
		eventLog.Fatalf("cannot load config %s: %v", *configPath, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	codec, err := rscodec.New()
	if err != nil {
		eventLog.Fatalf("cannot create RS codec: %v", err)
	}

	r := receiver.New(codec, logger)
	r.SetEnableNavDataMonitor(cfg.EnableNavDataMonitor)

	navMonitor := monitor.New(cfg.MonitorLogDir)
	navMonitor.SetEnabled(cfg.EnableNavDataMonitor)
	go relayMonitorEvents(r, navMonitor, logger)

	if cfg.SweepEnabled() {
		sweeper := sweep.New(r, cfg.TTL(), sweep.NewEventLog(eventLog.Writer()))
		if err := sweeper.Start(cfg.StaleSlotSweepCron); err != nil {
			eventLog.Fatalf("cannot start stale-slot sweep: %v", err)
		}
	}

	go relayCorrections(r, os.Stdout, logger)

	readPages(os.Stdin, r, logger)
}

// readPages decodes one JSON-encoded inboundPage per line from r and
// drives them through the receiver's single page-handler entry point.
func readPages(r io.Reader, rcv *receiver.Receiver, logger *slog.Logger) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var in inboundPage
		if err := json.Unmarshal(scanner.Bytes(), &in); err != nil {
			logger.Warn("cannot parse inbound page", "error", err)
			continue
		}
		rcv.HandlePage(in.Page, receiver.PageMeta{PRN: in.PRN, TowAtCurrentSymbolMs: in.TowAtCurrentSymbolMs})
	}
	if err := scanner.Err(); err != nil {
		logger.Error("error reading inbound pages", "error", err)
	}
}

// relayCorrections writes every published HAS Correction Record to w as
// one JSON line.
func relayCorrections(r *receiver.Receiver, w io.Writer, logger *slog.Logger) {
	for rec := range r.Corrections {
		line, err := json.Marshal(rec)
		if err != nil {
			logger.Warn("cannot marshal correction record", "error", err)
			continue
		}
		fmt.Fprintln(w, string(line))
	}
}

// relayMonitorEvents forwards every published MonitorEvent to the
// nav-data monitor sink.
func relayMonitorEvents(r *receiver.Receiver, w *monitor.Writer, logger *slog.Logger) {
	for event := range r.Monitor {
		line, err := json.Marshal(event)
		if err != nil {
			logger.Warn("cannot marshal monitor event", "error", err)
			continue
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			logger.Warn("cannot write monitor event", "error", err)
		}
	}
}
