// Package privacy reduces client addresses to network prefixes before they
// reach request logs. Audit entries keep the full address.
package privacy

import (
	"fmt"
	"net/netip"
)

// AnonymizeIP masks an IPv4 address to its /24 and an IPv6 address to its /48.
// Returns "unknown" for empty or unknown input and "invalid" when the value
// does not parse as an address.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.0", b[0], b[1], b[2])
	}

	b := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::", b[0], b[1], b[2], b[3], b[4], b[5])
}
