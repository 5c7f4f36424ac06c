package domain

import (
	"fmt"
	"regexp"
)

// The separator between node and driver is matched by a wildcard, not a
// literal dot. Slugs such as "port@node$driver" are therefore accepted by
// NewDeviceFromSlug. Use NewDeviceFromStrictSlug to require the dot.
var (
	slugPattern       = regexp.MustCompile(`^([\w-]*)@([\w-]*).([\w-]*)$`)
	strictSlugPattern = regexp.MustCompile(`^([\w-]*)@([\w-]*)\.([\w-]*)$`)
	slugPartPattern   = regexp.MustCompile(`^[\w-]*$`)
)

// Device identifies a measurement source as port@node.driver
type Device struct {
	slug   string
	port   string
	node   string
	driver string
}

// NewDevice returns a device for the given parts. Each part may only contain
// alphanumerics, '-' or '_'.
func NewDevice(port, node, driver string) (Device, bool) {
	d := Device{
		slug:   fmt.Sprintf("%s@%s.%s", port, node, driver),
		port:   port,
		node:   node,
		driver: driver,
	}

	if !d.isValid() {
		return Device{}, false
	}

	return d, true
}

func NewDeviceFromSlug(slug string) (Device, bool) {
	return deviceFromSlug(slugPattern, slug)
}

func NewDeviceFromStrictSlug(slug string) (Device, bool) {
	return deviceFromSlug(strictSlugPattern, slug)
}

func deviceFromSlug(pattern *regexp.Regexp, slug string) (Device, bool) {
	m := pattern.FindStringSubmatch(slug)
	if m == nil {
		return Device{}, false
	}

	return Device{
		slug:   slug,
		port:   m[1],
		node:   m[2],
		driver: m[3],
	}, true
}

func (d Device) isValid() bool {
	if !slugPattern.MatchString(d.slug) {
		return false
	}

	for _, part := range []string{d.port, d.node, d.driver} {
		if !slugPartPattern.MatchString(part) {
			return false
		}
	}

	return true
}

func (d Device) Slug() string   { return d.slug }
func (d Device) Port() string   { return d.port }
func (d Device) Node() string   { return d.node }
func (d Device) Driver() string { return d.driver }

// IsZero reports whether d was never constructed. A valid slug always
// contains at least the '@' and the separator.
func (d Device) IsZero() bool {
	return d.slug == ""
}

func (d Device) Equal(other Device) bool {
	return d.slug == other.slug
}

func (d Device) String() string {
	return d.slug
}
