// Command taskdeckd runs the TaskDeck desktop daemon: the authentication
// bridge plus the IPC server the UI process talks to. It is also the target
// the OS invokes for taskdeck:// URL activations; a second instance forwards
// the deep link to the running daemon and exits.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/taskdeck/taskdeck"
	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/ipc"
)

type args struct {
	DataDir  string `arg:"--data-dir,env:TASKDECK_DATA_PATH" help:"directory for application data"`
	LogDir   string `arg:"--log-dir,env:TASKDECK_LOG_PATH" help:"directory for log files"`
	LogLevel string `arg:"--log-level,env:TASKDECK_LOG_LEVEL" default:"info" help:"trace, debug, info, warn, or error"`
	DeepLink string `arg:"--deeplink" help:"forward a taskdeck:// activation to the running daemon and exit"`
}

func (args) Version() string { return app.Name + "d " + app.Version }

func main() {
	var a args
	arg.MustParse(&a)

	if a.DeepLink != "" {
		forwardDeepLink(a.DeepLink)
		return
	}

	slog.Info("Starting taskdeckd", "version", app.Version)
	td, err := taskdeck.New(taskdeck.Options{
		DataDir:  a.DataDir,
		LogDir:   a.LogDir,
		LogLevel: a.LogLevel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize: %v\n", err)
	}
	if err := td.StartIPC(); err != nil {
		log.Fatalf("Failed to start IPC: %v\n", err)
	}

	// Wait for a signal to gracefully shut down.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("Shutting down...")
	time.AfterFunc(15*time.Second, func() {
		log.Fatal("Failed to shut down in time, forcing exit.")
	})
	td.Close()
}

// forwardDeepLink hands the activation URL to the daemon over IPC. The URL's
// query carries a one-time code; it is never logged.
func forwardDeepLink(rawURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ipc.ForwardDeepLink(ctx, rawURL); err != nil {
		// the daemon already reported the outcome on its event stream; this
		// process only relays
		slog.Warn("Deep link forward failed", "error", err)
		os.Exit(1)
	}
}
