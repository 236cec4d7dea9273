// Package pageclass maps raw client navigation URLs to canonical page
// names. URLs embed a stable route plus transient identifiers and query
// state; classification strips the transient part so distinct visits to
// the same logical page collapse to one label, and reports a path depth
// as a proxy for UI nesting.
package pageclass

import "strings"

// PageInfo is the classification result for one navigation URL.
type PageInfo struct {
	Page  string
	Depth int
}

// routePages are routes whose last path segment is already the canonical
// page name.
var routePages = map[string]bool{
	"dashboard":            true,
	"verification":         true,
	"create-password":      true,
	"send-code":            true,
	"patient-form":         true,
	"license":              true,
	"invite-code":          true,
	"invited-patient-form": true,
}

// Classify derives the canonical page name and depth for a navigation
// URL. subNav carries the selected item name for two-column pages, where
// the client logs it in a sibling field instead of the URL. An empty url
// means the record carried no URL and classifies to {"", 0}.
//
// Classify is a pure function; same inputs always produce the same result.
func Classify(url, subNav string) PageInfo {
	var final PageInfo
	if url == "" {
		return final
	}

	// Drop the scheme/host/hash-routing boilerplate, e.g.
	// "://myapp.com/#/discharge/resources" -> ["discharge", "resources"].
	segments := strings.Split(url, "/")
	if len(segments) > 4 {
		segments = segments[4:]
	} else {
		segments = nil
	}

	last := ""
	if len(segments) > 0 {
		last = segments[len(segments)-1]
	}
	params := strings.Split(last, "?")
	route := strings.ToLower(params[0])

	var page string
	switch {
	case route == "":
		page = "splash"
	case routePages[route]:
		page = route
	case route == "login":
		// login?mode=register is the registration page. A login param
		// without "register" leaves the page blank, as the client does.
		if len(params) > 1 {
			if strings.Contains(params[1], "register") {
				page = "register"
			}
		} else {
			page = route
		}
	default:
		if subNav != "" {
			// Two-column page: the selected goal name arrives in the
			// sibling log field, e.g. "goal:Walk 10 Feet".
			page = strings.ReplaceAll(subNav, "goal:", "")
		} else {
			// One-column page: the name is the final query param, e.g.
			// ".../Mobility?goalName=Walk%20150%20Feet".
			page = strings.ToLower(params[len(params)-1])
			page = strings.ReplaceAll(page, "goalname=", "")
		}

		// A materials route ends in a document id; use the segment
		// before it. An invite route ends in the invited user's id.
		if idx := indexOf(segments, "materials"); idx >= 0 && len(segments) >= 2 {
			page = strings.ToLower(segments[len(segments)-2])
		}
		if indexOf(segments, "invite") >= 0 {
			page = "invite"
		}
	}

	page = strings.ReplaceAll(page, "%20", " ")
	final.Page = page
	if page != "splash" {
		final.Depth = len(segments)
	}
	return final
}

func indexOf(segments []string, token string) int {
	for i, s := range segments {
		if s == token {
			return i
		}
	}
	return -1
}
