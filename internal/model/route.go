package model

import "fmt"

// Route identifies which sub-system owns a conversation turn.
type Route int

const (
	RouteUnset Route = iota
	RouteUnits
	RouteRAG
)

const (
	routeTokenUnits = "UNITS"
	routeTokenRAG   = "RAG"
)

func (r Route) String() string {
	switch r {
	case RouteUnits:
		return routeTokenUnits
	case RouteRAG:
		return routeTokenRAG
	default:
		return ""
	}
}

// ParseRoute maps a stored route token back to a Route. The empty string maps
// to RouteUnset so freshly created states round-trip cleanly.
func ParseRoute(token string) (Route, error) {
	switch token {
	case routeTokenUnits:
		return RouteUnits, nil
	case routeTokenRAG:
		return RouteRAG, nil
	case "":
		return RouteUnset, nil
	default:
		return RouteUnset, fmt.Errorf("unknown route token: %q", token)
	}
}
