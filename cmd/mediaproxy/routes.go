package main

import (
	"sort"
	"strings"

	"github.com/gorilla/mux"

	"github.com/flox1an/nostube-imgproxy/internal/logging"
)

// routeInfo describes one registered method+path pair.
type routeInfo struct {
	Method string
	Path   string
	Name   string
}

// walkRoutes extracts every registered route from router.
func walkRoutes(router *mux.Router) ([]routeInfo, error) {
	var routes []routeInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		name := route.GetName()
		for _, method := range methods {
			routes = append(routes, routeInfo{Method: method, Path: pathTemplate, Name: name})
		}

		return nil
	})

	return routes, err
}

// logRoutes dumps the router's registered routes at debug level, grouped by
// their first path segment, then logs a one-line summary at info level.
func logRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := walkRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]routeInfo)
		for _, route := range routes {
			prefix := routeGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP routes registered")
}

// routeGroup extracts the first path segment as a grouping key for the
// debug-level route dump.
func routeGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
