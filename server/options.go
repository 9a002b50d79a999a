package server

import "time"

type Options struct {
	// ServerName overrides the identifier injected into responses.
	ServerName string

	// IdleTimeout bounds how long a connection may sit between
	// requests. Zero disables it.
	IdleTimeout time.Duration

	ReadBufferSize int
}
