package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned when a URL resolves to an address that is
// not on the public internet.
var ErrBlockedAddress = errors.New("address not allowed")

// Carrier-grade NAT space is neither private nor public.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// PublicAddr reports whether a is a routable public unicast address.
func PublicAddr(a netip.Addr) bool {
	a = a.Unmap()
	switch {
	case !a.IsValid(),
		a.IsUnspecified(),
		a.IsLoopback(),
		a.IsPrivate(),
		a.IsLinkLocalUnicast(),
		a.IsLinkLocalMulticast(),
		a.IsInterfaceLocalMulticast(),
		a.IsMulticast(),
		sharedAddressSpace.Contains(a):
		return false
	}
	return true
}

// refusePrivate runs after DNS resolution for every connection, so it also
// covers redirects and hosts that resolve differently on a second lookup.
func refusePrivate(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if !PublicAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

// guardedTransport dials only public addresses. Proxies are disabled since
// the proxy, not the target, would be checked.
func guardedTransport() *http.Transport {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second, Control: refusePrivate}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = dialer.DialContext
	return t
}

// CheckHost resolves the host of rawURL and fails with ErrBlockedAddress if
// any of its addresses is not public. Use it before handing a URL to
// something that dials on its own, such as a browser.
func CheckHost(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &Error{URL: rawURL, Message: "unparseable", Cause: fmt.Errorf("%w: %v", ErrInvalidURL, err)}
	}
	host := u.Hostname()

	var addrs []netip.Addr
	if a, err := netip.ParseAddr(host); err == nil {
		addrs = []netip.Addr{a}
	} else if addrs, err = net.DefaultResolver.LookupNetIP(ctx, "ip", host); err != nil {
		return &Error{URL: rawURL, Message: "resolving host", Cause: err}
	}

	for _, a := range addrs {
		if !PublicAddr(a) {
			return &Error{URL: rawURL, Message: "host is not public", Cause: fmt.Errorf("%w: %s", ErrBlockedAddress, a)}
		}
	}
	return nil
}
