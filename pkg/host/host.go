// Package host classifies filesystem entries by their host-specific suffix.
//
// An entry named "config@@laptop" (with separator "@@") belongs to the
// machine called "laptop" only; "config" belongs to every machine. On
// "laptop" the suffixed entry wins over the plain one.
package host

import (
	"os"
	"path"
	"strings"

	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/types"
)

// EnvHostname overrides the detected hostname
const EnvHostname = "DTSYNC_HOSTNAME"

// Current returns the machine's hostname, honouring EnvHostname
func Current() (string, error) {
	if name := os.Getenv(EnvHostname); name != "" {
		return name, nil
	}
	name, err := os.Hostname()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot determine hostname")
	}
	return name, nil
}

// Split separates a single path component into its base name and host
// token. A name containing the separator more than once, or starting with
// it, or ending with an empty token is ambiguous and rejected.
func Split(name, sep string) (base, token string, suffixed bool, err error) {
	switch strings.Count(name, sep) {
	case 0:
		return name, "", false, nil
	case 1:
		base, token, _ = strings.Cut(name, sep)
		if base == "" {
			return "", "", false, errors.Newf(errors.ErrHostAmbiguous,
				"hostname separator %q is a prefix of %q", sep, name)
		}
		if token == "" {
			return "", "", false, errors.Newf(errors.ErrHostAmbiguous,
				"empty hostname after separator %q in %q", sep, name)
		}
		return base, token, true, nil
	default:
		return "", "", false, errors.Newf(errors.ErrHostAmbiguous,
			"hostname separator %q occurs more than once in %q", sep, name)
	}
}

// Classify returns the host class of a single path component
func Classify(name, sep, hostname string) (types.HostClass, error) {
	_, token, suffixed, err := Split(name, sep)
	if err != nil {
		return types.HostOther, err
	}
	switch {
	case !suffixed:
		return types.HostGeneral, nil
	case token == hostname:
		return types.HostCurrent, nil
	default:
		return types.HostOther, nil
	}
}

// Suffix returns the host-specific suffix for hostname
func Suffix(sep, hostname string) string {
	return sep + hostname
}

// StripPath removes the host suffix from every component of a
// slash-separated relative path
func StripPath(rel, sep string) (string, error) {
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		base, _, _, err := Split(part, sep)
		if err != nil {
			return "", err
		}
		parts[i] = base
	}
	return path.Join(parts...), nil
}
