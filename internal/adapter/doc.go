// Package adapter implements the inventory source adapters.
//
// Each adapter wraps one external system behind the same capability
// contract: Name, Enabled, and a context-bounded Fetch that returns the
// source's slice of the inventory. Adapters are pure data fetchers; caching,
// cooldown, and retry policy live in the scan coordinator.
//
// # Sources
//
// NetScanner sweeps the configured subnet with an nmap ping scan and yields
// hostname/IP/MAC/vendor per live host.
//
// UniFi talks to a UniFi controller over its session API, auto-detecting
// UniFi OS consoles versus classic controllers, and yields connected
// clients, configured networks, and access points.
//
// Portainer enumerates a Portainer instance's Docker endpoints and yields
// all containers, tagged with the owning endpoint.
//
// Proxmox lists a cluster's qemu and lxc guests via token auth.
//
// # Errors
//
// Fetch failures are wrapped in SourceError with a timeout / auth /
// unreachable / internal classification so the coordinator can record them
// per source without inspecting backend specifics.
package adapter
