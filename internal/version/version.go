package version

import (
	_ "embed" // for go:embed
	"strconv"
	"strings"
)

// VERSION holds the server's version
//
//go:embed VERSION
var VERSION string

// Version segments
var (
	MAJOR int
	MINOR int
	FIX   int
	PRE   int
)

func init() {
	VERSION = strings.TrimSpace(VERSION)
	MAJOR, MINOR, FIX, PRE = parse(VERSION)
}

// parse splits a version of the form MAJOR.MINOR.FIX[-prN]
func parse(v string) (major, minor, fix, pre int) {
	segments := strings.SplitN(v, ".", 3)
	if len(segments) != 3 {
		return
	}
	major, _ = strconv.Atoi(segments[0])
	minor, _ = strconv.Atoi(segments[1])
	fixPart, prePart, hasPre := strings.Cut(segments[2], "-")
	fix, _ = strconv.Atoi(fixPart)
	if hasPre {
		pre, _ = strconv.Atoi(strings.TrimPrefix(prePart, "pr"))
	}
	return
}
