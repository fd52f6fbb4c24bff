// ABOUTME: mDNS service discovery for pcmscope servers
// ABOUTME: Advertises the HTTP API on the LAN and browses for other instances
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD service type of a pcmscope HTTP server
const ServiceType = "_pcmscope._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Version     string
}

// Manager handles mDNS advertisement
type Manager struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
}

// ServerInfo describes a discovered server
type ServerInfo struct {
	Name string
	Host string
	Port int
	Info []string
}

// URL returns the base HTTP URL of the server
func (s ServerInfo) URL() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(s.Host, fmt.Sprint(s.Port)))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// txtRecords returns the TXT records advertised with the service
func (m *Manager) txtRecords() []string {
	txt := []string{"path=/api"}
	if m.config.Version != "" {
		txt = append(txt, "version="+m.config.Version)
	}
	return txt
}

// Advertise advertises this server via mDNS until Stop is called
func (m *Manager) Advertise() error {
	if m.config.Port <= 0 {
		return fmt.Errorf("invalid port for advertisement: %d", m.config.Port)
	}

	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Stop stops advertising
func (m *Manager) Stop() {
	m.cancel()
}

// Discover browses the LAN for pcmscope servers for up to timeout
func Discover(ctx context.Context, timeout time.Duration) ([]ServerInfo, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	var servers []ServerInfo
	done := make(chan struct{})

	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for entry := range entries {
			if !strings.Contains(entry.Name, ServiceType) || seen[entry.Name] {
				continue
			}
			seen[entry.Name] = true

			host := entry.Host
			if entry.AddrV4 != nil {
				host = entry.AddrV4.String()
			}
			server := ServerInfo{
				Name: instanceName(entry.Name),
				Host: host,
				Port: entry.Port,
				Info: entry.InfoFields,
			}
			log.Printf("Discovered server: %s at %s:%d", server.Name, server.Host, server.Port)
			servers = append(servers, server)
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	queryErr := make(chan error, 1)
	go func() {
		queryErr <- mdns.Query(params)
	}()

	var err error
	select {
	case err = <-queryErr:
	case <-ctx.Done():
		err = ctx.Err()
		// Query returns once its timeout elapses
		<-queryErr
	}
	close(entries)
	<-done

	if err != nil {
		return servers, fmt.Errorf("mdns query failed: %w", err)
	}
	return servers, nil
}

// instanceName strips the service type and domain from an mDNS entry name
func instanceName(fullName string) string {
	if i := strings.Index(fullName, "."+ServiceType); i > 0 {
		return strings.ReplaceAll(fullName[:i], `\ `, " ")
	}
	return fullName
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
