// Command webserver wires the TCP transport, the file-backed log sink
// and the HTTP server together.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/lib/logfile"
	"github.com/Daryl-03/web-server-go/server"
	"github.com/Daryl-03/web-server-go/transport/tcp"
	"github.com/benbjohnson/clock"
)

func main() {
	host := flag.String("host", "127.0.0.1", "bind address")
	port := flag.Uint("port", 8080, "listening port")
	logPath := flag.String("log", "", "append log records to this file instead of stderr")
	idle := flag.Duration("idle-timeout", 30*time.Second, "close idle connections after this long (0 disables)")
	flag.Parse()

	clk := clock.New()

	var logger *slog.Logger
	if *logPath != "" {
		logger = slog.New(logfile.New(*logPath, slog.LevelInfo, clk))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	lis, err := tcp.Listen(*host, uint16(*port))
	if err != nil {
		fmt.Fprintln(os.Stderr, "listen:", err)
		os.Exit(1)
	}

	srv := server.New(bridge.NewListener(lis), logger, clk, server.DefaultHandler, server.Options{
		IdleTimeout: *idle,
	})

	srv.Start()
	logger.Info("server started", "addr", lis.Addr().String())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if err := srv.Close(); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
