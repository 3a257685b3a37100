package torconfig

import (
	"net"
	"strconv"
)

// Config encapsulates configuration options for a Tor relay.
type Config struct {
	Nickname         string
	IP               net.IP
	ORBindIP         net.IP
	ORPort           uint16
	Platform         string
	Contact          string
	BandwidthAverage int
	BandwidthBurst   int
}

// ORBindAddr returns the host:port the relay listens on.
func (c Config) ORBindAddr() string {
	host := ""
	if c.ORBindIP != nil {
		host = c.ORBindIP.String()
	}
	return net.JoinHostPort(host, strconv.Itoa(int(c.ORPort)))
}
