// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns low-level network failures into messages a user can
// act on when the CRM login or REST endpoints cannot be reached.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category groups network failures by what the user can do about them.
type Category int

const (
	Generic Category = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
)

// Classify inspects err and returns its Category.
func Classify(err error) Category {
	switch {
	case err == nil:
		return Generic
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isTLSError(err):
		return TLS
	}
	return Generic
}

// FormatNetworkError prints advice for err and returns it wrapped. action
// describes what was being attempted ("logging in"); endpoint is the URL that
// failed and only its host is shown.
func FormatNetworkError(err error, action, endpoint string) error {
	if err == nil {
		return nil
	}
	cat := Classify(err)
	host := ExtractHostFromURL(endpoint)

	pterm.Printf("%s while %s\n", headline(cat), action)
	pterm.Println()
	for _, line := range Advice(cat, host) {
		pterm.Println(line)
	}
	pterm.Println()
	if cat == Generic {
		details := err.Error()
		if len(details) > 100 {
			details = details[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", details)
	}
	return fmt.Errorf("network error: %w", err)
}

func headline(cat Category) string {
	switch cat {
	case Timeout:
		return "⏱️  Connection timeout"
	case DNS:
		return "🌐 Cannot resolve server address"
	case ConnectionRefused:
		return "🚫 Connection refused"
	case TLS:
		return "🔒 Secure connection failed"
	}
	return "❌ Cannot reach the CRM"
}

// Advice lists troubleshooting hints for a category.
func Advice(cat Category, host string) []string {
	switch cat {
	case Timeout:
		return []string{
			"The server took too long to respond. This could mean:",
			"  • Slow internet connection",
			"  • " + host + " is under heavy load",
			"  • The timeout_seconds setting is too low for large result pages",
		}
	case DNS:
		return []string{
			"Unable to look up " + host + ". Please check:",
			"  • Your internet connection is working",
			"  • The soap_url setting names the right login host",
			"  • No DNS-level blocking (corporate firewall, VPN)",
		}
	case ConnectionRefused:
		return []string{
			host + " is not accepting connections. This could mean:",
			"  • Wrong server address or port in soap_url",
			"  • A proxy or firewall is blocking the connection",
		}
	case TLS:
		return []string{
			"Cannot establish a secure HTTPS connection to " + host + ". Try:",
			"  • Check your system date and time",
			"  • Verify network proxy settings",
		}
	}
	return []string{
		"Please check:",
		"  • Your internet connection",
		"  • Whether " + host + " is accessible from your network",
		"  • Firewall settings that might block HTTPS requests",
	}
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "x509") ||
		strings.Contains(s, "certificate") ||
		strings.Contains(s, "handshake")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "the server"
	}
	return u.Host
}
