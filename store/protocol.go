package store

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/inexplicable/redis_checker/model"
)

// DefaultPort is the port redis listens on out of the box
const DefaultPort = 6379

// ErrParseAddress is an error when parsing a "host:port:password" target
var ErrParseAddress = errors.New("address parse error")

// ParseInfo flattens an `INFO` reply into field:value pairs, section headers and blank lines are dropped
//
//	# Server
//	redis_version:7.2.4
//	# Commandstats
//	cmdstat_keys:calls=2,usec=11,usec_per_call=5.50,rejected_calls=0,failed_calls=0
func ParseInfo(raw string) map[string]string {
	fields := map[string]string{}
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, value, found := strings.Cut(line, ":"); found {
			fields[name] = value
		}
	}
	return fields
}

// ParseClientList parses `CLIENT LIST`, one client per line of space separated name=value pairs
//
//	id=3 addr=127.0.0.1:51234 laddr=127.0.0.1:6379 fd=8 name= age=10 idle=0 flags=N db=0 cmd=client|list
func ParseClientList(raw string) []model.ClientInfo {
	clients := []model.ClientInfo{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := map[string]string{}
		for _, pair := range strings.Fields(line) {
			if name, value, found := strings.Cut(pair, "="); found {
				fields[name] = value
			}
		}
		clients = append(clients, model.ClientInfo{
			ID:     fields["id"],
			Addr:   fields["addr"],
			Name:   fields["name"],
			DB:     fields["db"],
			Cmd:    fields["cmd"],
			Fields: fields,
		})
	}
	return clients
}

// Target is where to connect to
type Target struct {
	Host     string
	Port     int
	Password string
}

// Addr is "host:port", ipv6 hosts are bracketed
func (target Target) Addr() string {
	return net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
}

// ParseAddress accepts "host", "host:port" and "host:port:password"
func ParseAddress(raw string) (Target, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 3)
	target := Target{Host: parts[0], Port: DefaultPort}
	if target.Host == "" {
		return Target{}, fmt.Errorf("%w: empty host in %q", ErrParseAddress, raw)
	}
	if len(parts) > 1 {
		port, err := strconv.Atoi(parts[1])
		if err != nil || port <= 0 || port > 65535 {
			return Target{}, fmt.Errorf("%w: bad port in %q", ErrParseAddress, raw)
		}
		target.Port = port
	}
	if len(parts) > 2 {
		target.Password = parts[2]
	}
	return target, nil
}
