// Command btcesctl replays a recorded HCI session against a btces.Core
// for offline diagnostics, and can optionally serve a read-only HTTP
// status endpoint while doing so.
package main

import (
	"fmt"
	"os"

	"github.com/btces/btces"
	"github.com/btces/btces/internal/replay"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "path to a YAML Config file")
		replayPath = pflag.StringP("replay", "r", "", "path to a YAML replay Session fixture")
		guardBand  = pflag.IntP("afh-guard-band", "g", btces.DefaultGuardBand, "BT channels excluded on either side of a WLAN carrier's center channel")
		caMode     = pflag.StringP("ca-mode", "m", "leave-alone", "Channel Assessment coupling: leave-alone, read-controller, assume-on, assume-off")
		httpAddr   = pflag.String("http-addr", "", "if set, serve a read-only /state status endpoint on this address")
		help       = pflag.Bool("help", false, "display help text")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: btcesctl [flags]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	log := logrus.StandardLogger()

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			log.WithError(err).Fatal("btcesctl: loading config")
		}
		cfg = loaded
	}
	if pflag.CommandLine.Changed("afh-guard-band") {
		cfg.AFHGuardBand = *guardBand
	}
	if pflag.CommandLine.Changed("ca-mode") {
		cfg.CAMode = *caMode
	}

	mode, err := cfg.caModeValue()
	if err != nil {
		log.WithError(err).Fatal("btcesctl: invalid ca-mode")
	}

	mon := newStateMonitor()
	opts := []btces.Option{
		btces.WithTimer(newWallClockTimer()),
		btces.WithAFHSink(loggingAFHSink{log: log}),
		btces.WithCAMode(mode),
		btces.WithGuardBand(cfg.AFHGuardBand),
		btces.WithLogger(log),
	}
	if mode != btces.CALeaveAlone {
		opts = append(opts, btces.WithCASink(loggingCASink{log: log}))
	}
	core, status := btces.New(opts...)
	if !status.Ok() {
		log.WithField("status", status).Fatal("btcesctl: constructing core")
	}
	if status := core.Init(); !status.Ok() {
		log.WithField("status", status).Fatal("btcesctl: initializing core")
	}
	defer core.Deinit()

	if status := core.Register(mon.onEvent, nil); !status.Ok() {
		log.WithField("status", status).Fatal("btcesctl: registering subscriber")
	}

	if *httpAddr != "" {
		srv := newStatusServer(*httpAddr, mon)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.WithError(err).Error("btcesctl: status server stopped")
			}
		}()
	}

	if *replayPath != "" {
		session, err := replay.Load(*replayPath)
		if err != nil {
			log.WithError(err).Fatal("btcesctl: loading replay session")
		}
		log.WithField("session", session.Name).Info("btcesctl: replaying session")
		if err := replay.Run(core, session); err != nil {
			log.WithError(err).Fatal("btcesctl: replaying session")
		}
	}

	for _, ev := range mon.snapshot() {
		fmt.Printf("%s addr=%s handle=0x%04X success=%v\n", ev.Code, ev.Addr, ev.Handle, ev.Success)
	}
}
