// Package server provides the Echo HTTP server hosting the upload,
// resolution, and admin API.
package server

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// uploadBodyLimit caps request bodies; 3D scans can be large but not
// unbounded.
const uploadBodyLimit = "200M"

// Handler registers routes on the Echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

// Server wraps Echo with the middleware stack and registered handlers.
type Server struct {
	echo *echo.Echo
	addr string
}

// New builds the Echo server with recovery, request logging, CORS for
// the browser clients, and the given handlers.
func New(addr string, handlers ...Handler) *Server {
	if addr == "" {
		addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(uploadBodyLimit))

	for _, h := range handlers {
		if h != nil {
			h.Register(e)
		}
	}

	return &Server{echo: e, addr: addr}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.addr)
	return s.echo.Start(s.addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
