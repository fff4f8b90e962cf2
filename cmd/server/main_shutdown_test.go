package main

import (
	"net/http"
	"os"
	osSignal "os/signal"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestShutdownOnSignal(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	for _, sig := range []os.Signal{syscall.SIGTERM, os.Interrupt} {
		signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
			go func() {
				ch <- sig
			}()
		}

		server := &http.Server{}
		called := make(chan struct{}, 1)
		server.RegisterOnShutdown(func() {
			called <- struct{}{}
		})

		shutdown(server, time.Millisecond, zaptest.NewLogger(t))

		select {
		case <-called:
		case <-time.After(time.Second):
			t.Fatalf("expected server shutdown callback to execute for %s", sig)
		}
	}
}
