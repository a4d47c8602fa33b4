package realtime

import "time"

// Settings tunes both transports.
type Settings struct {
	// Watermark is the per-connection outbound buffer. A client that lets it
	// fill up is disconnected.
	Watermark    int
	Keepalive    time.Duration
	WriteTimeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Watermark:    64,
		Keepalive:    15 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
