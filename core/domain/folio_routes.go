package domain

import "strings"

// ReservedSegments are first path segments owned by the application.
// No slug may equal one of them.
var ReservedSegments = []string{
	"api",
	"dashboard",
	"login",
	"p",
	"_next",
	"static",
	"assets",
	"favicon.ico",
	"robots.txt",
	"sitemap.xml",
	"health",
	"ready",
	"metrics",
}

// IsReservedSegment reports whether seg is an application route segment.
func IsReservedSegment(seg string) bool {
	seg = strings.ToLower(seg)
	for _, r := range ReservedSegments {
		if seg == r {
			return true
		}
	}
	return false
}
