// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type fakeServer struct {
	listenErr    error
	shutdownErr  error
	listenCalled chan struct{}
	shutdown     chan struct{}
}

func newFakeServer(listenErr, shutdownErr error) *fakeServer {
	return &fakeServer{
		listenErr:    listenErr,
		shutdownErr:  shutdownErr,
		listenCalled: make(chan struct{}),
		shutdown:     make(chan struct{}),
	}
}

func (f *fakeServer) ListenAndServe() error {
	close(f.listenCalled)
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.shutdown
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(_ context.Context) error {
	close(f.shutdown)
	return f.shutdownErr
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	server := newFakeServer(nil, nil)
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.listenCalled
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestHTTPServiceStartupFailure(t *testing.T) {
	boom := errors.New("port in use")
	svc := NewHTTPServerService(newFakeServer(boom, nil), time.Second)

	err := svc.Serve(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Serve() error = %v, want wrapped %v", err, boom)
	}
}

func TestHTTPServiceShutdownFailure(t *testing.T) {
	shutdownErr := errors.New("connections hung")
	server := newFakeServer(nil, shutdownErr)
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.listenCalled
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() error = %v, want wrapped %v", err, shutdownErr)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
