package main

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
)

// parseMode reads an octal permission string such as "755" or "0644".
// Only the permission bits are accepted.
func parseMode(s string) (os.FileMode, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil || n > 0o777 {
		return 0, fmt.Errorf("invalid mode %q: want octal permission bits 0-777", s)
	}
	return os.FileMode(n), nil
}

// parseOwner reads OWNER[:GROUP] where each side is a numeric id or a name
// known to the system. A missing group keeps the group unchanged (-1).
func parseOwner(s string) (uid, gid int, err error) {
	owner, group, hasGroup := strings.Cut(s, ":")
	if owner == "" {
		return 0, 0, fmt.Errorf("invalid owner %q", s)
	}
	uid, err = lookupID(owner, func(name string) (string, error) {
		u, err := user.Lookup(name)
		if err != nil {
			return "", err
		}
		return u.Uid, nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("invalid owner %q: %w", owner, err)
	}

	gid = -1
	if hasGroup && group != "" {
		gid, err = lookupID(group, func(name string) (string, error) {
			g, err := user.LookupGroup(name)
			if err != nil {
				return "", err
			}
			return g.Gid, nil
		})
		if err != nil {
			return 0, 0, fmt.Errorf("invalid group %q: %w", group, err)
		}
	}
	return uid, gid, nil
}

func lookupID(s string, byName func(string) (string, error)) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		if id < 0 {
			return 0, fmt.Errorf("negative id %d", id)
		}
		return id, nil
	}
	idStr, err := byName(s)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(idStr)
}
