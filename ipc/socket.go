//go:build !windows

package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"

	"github.com/taskdeck/taskdeck/app"
)

const apiURL = "http://" + app.Name

// use a var so it can be overridden in tests
var _socketPath = filepath.Join(os.TempDir(), app.Name, "taskdeckd.sock")

// SetSocketPath overrides the daemon socket location. Must be called before
// Start on the daemon side and before any client call on the UI side.
func SetSocketPath(path string) {
	_socketPath = path
}

func socketPath() string {
	return _socketPath
}

func dialContext(_ context.Context, _, _ string) (net.Conn, error) {
	return net.DialUnix("unix", nil, &net.UnixAddr{
		Name: socketPath(),
		Net:  "unix",
	})
}

type sockListener struct {
	net.Listener
	path string
}

func listen() (net.Listener, error) {
	path := socketPath()
	os.Remove(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create socket dir %s: %w", dir, err)
	}
	listener, err := net.ListenUnix("unix", &net.UnixAddr{
		Name: path,
		Net:  "unix",
	})
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	// the daemon runs as the signed-in user; nobody else gets to drive sign-in
	if err := os.Chmod(path, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	socket := &sockListener{
		Listener: listener,
		path:     path,
	}
	// ensure listener is closed
	runtime.SetFinalizer(socket, func(s *sockListener) {
		listener.Close()
	})
	return socket, nil
}

func (l *sockListener) Close() error {
	err := l.Listener.Close()
	os.Remove(l.path)
	return err
}
