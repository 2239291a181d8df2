package adapter

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Ullaakut/nmap/v3"
)

// ScannerConfig holds configuration for the seed sweep
type ScannerConfig struct {
	// CIDR is the network to sweep. Empty means detect the local subnet.
	CIDR string
	// Port is the SSH port probed on every address
	Port int
	// Timeout for individual connection attempts in the fallback sweep
	Timeout time.Duration
	// MaxConcurrent limits parallel probe operations in the fallback sweep
	MaxConcurrent int
}

// DefaultScannerConfig returns sensible defaults
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Port:          22,
		Timeout:       1 * time.Second,
		MaxConcurrent: 200,
	}
}

// Scanner sweeps a subnet for hosts answering on the SSH port, seeding
// the device list when none is configured. It prefers nmap and falls
// back to plain TCP connects when the nmap binary is unavailable.
type Scanner struct {
	config ScannerConfig
	log    *slog.Logger
}

// NewScanner creates a subnet scanner
func NewScanner(config ScannerConfig, logger *slog.Logger) *Scanner {
	if config.Port == 0 {
		config.Port = 22
	}
	if config.Timeout == 0 {
		config.Timeout = 1 * time.Second
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 200
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{config: config, log: logger}
}

// Scan sweeps the configured subnet and returns addresses with the SSH
// port open, sorted for consistent ordering. With no CIDR configured the
// local /24 is detected and swept.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	cidr := s.config.CIDR
	if cidr == "" {
		detected, err := localSubnet()
		if err != nil {
			return nil, fmt.Errorf("no scan network configured and detection failed: %w", err)
		}
		s.log.Info("detected local subnet", "cidr", detected)
		cidr = detected
	}

	hosts, err := s.nmapSweep(ctx, cidr)
	if err != nil {
		s.log.Warn("nmap sweep failed, falling back to TCP probes", "error", err)
		hosts, err = s.tcpSweep(ctx, cidr)
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(hosts)
	s.log.Info("scan complete", "cidr", cidr, "hosts", len(hosts))
	return hosts, nil
}

// nmapSweep probes the subnet with nmap
func (s *Scanner) nmapSweep(ctx context.Context, cidr string) ([]string, error) {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(cidr),
		nmap.WithPorts(strconv.Itoa(s.config.Port)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create nmap scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if warnings != nil && len(*warnings) > 0 {
		s.log.Debug("nmap warnings", "warnings", *warnings)
	}
	if err != nil {
		return nil, fmt.Errorf("nmap scan failed: %w", err)
	}

	hosts := make([]string, 0, len(result.Hosts))
	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}

		var addr string
		for _, a := range host.Addresses {
			if a.AddrType == "ipv4" {
				addr = a.Addr
				break
			}
		}
		if addr == "" {
			continue
		}

		for _, port := range host.Ports {
			if int(port.ID) == s.config.Port && port.State.State == "open" {
				hosts = append(hosts, addr)
				break
			}
		}
	}

	return hosts, nil
}

// tcpSweep probes every address in the subnet with a bounded worker pool
// of plain TCP connects
func (s *Scanner) tcpSweep(ctx context.Context, cidr string) ([]string, error) {
	ips, err := expandCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR: %w", err)
	}

	jobs := make(chan string, len(ips))
	results := make(chan string, len(ips))

	workers := s.config.MaxConcurrent
	if workers > len(ips) {
		workers = len(ips)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dialer := net.Dialer{Timeout: s.config.Timeout}
			for ip := range jobs {
				addr := net.JoinHostPort(ip, strconv.Itoa(s.config.Port))
				conn, err := dialer.DialContext(ctx, "tcp", addr)
				if err != nil {
					continue
				}
				conn.Close()
				results <- ip
			}
		}()
	}

	for _, ip := range ips {
		jobs <- ip
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var hosts []string
	for ip := range results {
		hosts = append(hosts, ip)
	}

	return hosts, nil
}

// expandCIDR converts a CIDR notation to a list of IPs
func expandCIDR(cidr string) ([]string, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		// Try parsing as single IP
		ip := net.ParseIP(cidr)
		if ip != nil {
			return []string{ip.String()}, nil
		}
		return nil, err
	}

	ip := ipNet.IP.To4()
	if ip == nil {
		return nil, fmt.Errorf("only IPv4 supported")
	}

	mask := ipNet.Mask

	networkInt := binary.BigEndian.Uint32(ip)
	maskInt := binary.BigEndian.Uint32(mask)

	// First and last addresses
	firstIP := networkInt & maskInt
	lastIP := firstIP | ^maskInt

	// Skip network and broadcast addresses for /24 and larger
	ones, bits := mask.Size()
	if ones <= 24 && bits == 32 {
		firstIP++
		lastIP--
	}

	// Safety limit - don't scan more than 1024 IPs
	if lastIP-firstIP > 1024 {
		return nil, fmt.Errorf("CIDR range too large (max 1024 IPs)")
	}

	var ips []string
	for i := firstIP; i <= lastIP; i++ {
		ipBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(ipBytes, i)
		ips = append(ips, net.IP(ipBytes).String())
	}

	return ips, nil
}

// localSubnet guesses the primary interface's /24 by opening a UDP
// socket toward a public resolver and reading the chosen source address
func localSubnet() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:53")
	if err != nil {
		return "", fmt.Errorf("failed to determine local address: %w", err)
	}
	defer conn.Close()

	localAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address type %T", conn.LocalAddr())
	}

	ip := localAddr.IP.To4()
	if ip == nil {
		return "", fmt.Errorf("no IPv4 address on primary interface")
	}

	return fmt.Sprintf("%d.%d.%d.0/24", ip[0], ip[1], ip[2]), nil
}
