package loop

import (
	"bufio"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// LinkProbe checks the network link and reports a signal figure in dBm.
// A probe with no radio reports 0.
type LinkProbe interface {
	Check() (ok bool, signalDBM int)
}

// TCPProbe verifies the link by dialing a well-known address (normally the
// MQTT broker) and reads the wifi signal level from /proc/net/wireless when
// an interface name is configured.
type TCPProbe struct {
	Addr    string
	Iface   string
	Timeout time.Duration
}

func (p TCPProbe) Check() (bool, int) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	conn, err := net.DialTimeout("tcp", p.Addr, timeout)
	ok := err == nil
	if conn != nil {
		_ = conn.Close()
	}
	return ok, wirelessSignalDBM(p.Iface)
}

// wirelessSignalDBM parses the signal level column of /proc/net/wireless
// for iface. Best effort: any failure reports 0.
func wirelessSignalDBM(iface string) int {
	if iface == "" {
		return 0
	}
	f, err := os.Open("/proc/net/wireless")
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, iface+":") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return 0
		}
		// fields[3] is the signal level, e.g. "-55." or "-55"
		v, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			return 0
		}
		return int(v)
	}
	return 0
}
