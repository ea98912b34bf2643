// Copyright 2020 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package nfsfs implements storage.Walker over NFSv3, using the portmapper
// MOUNT protocol and READDIRPLUS, grounded on
// original_source/storage/src/nfs.rs.
package nfsfs

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPort is the NFSv3/portmapper default port used when none is given.
const DefaultPort = 111

// ParsePath accepts the four forms spec.md §4.2.3 names, resolved in order:
//
//	nfs://server[:port]/abs/path  (preferred)
//	server:port:abs/path          (legacy)
//	server:abs/path               (legacy, default port)
//	server                        (default port, root path)
//
// grounded on original_source/storage/tests/test_parse_nfs_path.rs.
func ParsePath(raw string) (server string, port uint16, path string, err error) {
	if raw == "" {
		return "", 0, "", fmt.Errorf("nfsfs: empty path")
	}

	if rest, ok := strings.CutPrefix(raw, "nfs://"); ok {
		hostport, p, found := strings.Cut(rest, "/")
		if !found {
			p = ""
		}
		server, portStr, hasPort := strings.Cut(hostport, ":")
		if server == "" {
			return "", 0, "", fmt.Errorf("nfsfs: missing server name in %q", raw)
		}
		port = DefaultPort
		if hasPort {
			port, err = parsePort(portStr)
			if err != nil {
				return "", 0, "", err
			}
		}
		return server, port, normalizeAbs(p), nil
	}

	// Legacy "server:port:path" or "server:path" or bare "server".
	parts := strings.SplitN(raw, ":", 3)
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return "", 0, "", fmt.Errorf("nfsfs: missing server name in %q", raw)
		}
		return parts[0], DefaultPort, "/", nil
	case 2:
		if parts[0] == "" {
			return "", 0, "", fmt.Errorf("nfsfs: missing server name in %q", raw)
		}
		return parts[0], DefaultPort, normalizeAbs(parts[1]), nil
	default: // 3
		if parts[0] == "" {
			return "", 0, "", fmt.Errorf("nfsfs: missing server name in %q", raw)
		}
		port, err = parsePort(parts[1])
		if err != nil {
			return "", 0, "", err
		}
		return parts[0], port, normalizeAbs(parts[2]), nil
	}
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("nfsfs: invalid port %q: %w", s, err)
	}
	return uint16(n), nil
}

func normalizeAbs(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}
