package model

import (
	"sort"
	"strings"
)

// ClientInfo is one line of `CLIENT LIST`, only the fields the summary needs are typed
type ClientInfo struct {
	ID     string
	Addr   string
	Name   string
	DB     string
	Cmd    string
	Fields map[string]string
}

// IP is the host part of `Addr`, ipv6 brackets removed
func (clientInfo ClientInfo) IP() string {
	addr := clientInfo.Addr
	if colon := strings.LastIndex(addr, ":"); colon >= 0 {
		addr = addr[:colon]
	}
	return strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
}

// ClientCount is the number of connections from one IP
type ClientCount struct {
	IP    string `json:"ip" yaml:"ip"`
	Count int    `json:"count" yaml:"count"`
}

// SummarizeClients groups connections by source IP, busiest first
func SummarizeClients(clients []ClientInfo) []ClientCount {
	counts := map[string]int{}
	for _, client := range clients {
		counts[client.IP()]++
	}
	summary := make([]ClientCount, 0, len(counts))
	for ip, count := range counts {
		summary = append(summary, ClientCount{IP: ip, Count: count})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Count != summary[j].Count {
			return summary[i].Count > summary[j].Count
		}
		return summary[i].IP < summary[j].IP
	})
	return summary
}
