package http

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime"
	"sort"
	"strings"
)

// RouteInfo holds information about a registered route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// CollectRoutes walks the router and collects all registered routes,
// sorted by path then method.
func CollectRoutes(router Router) []RouteInfo {
	var routes []RouteInfo

	_ = router.Walk(func(method, path string, handler http.Handler) error {
		routes = append(routes, RouteInfo{
			Method:  method,
			Path:    path,
			Handler: handlerName(handler),
		})
		return nil
	})

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	return routes
}

// PrintRoutes writes the route table to w.
func PrintRoutes(w io.Writer, routes []RouteInfo) {
	fmt.Fprintf(w, "%-8s %-40s %s\n", "METHOD", "PATH", "HANDLER")
	for _, r := range routes {
		fmt.Fprintf(w, "%-8s %-40s %s\n", r.Method, r.Path, r.Handler)
	}
	fmt.Fprintf(w, "%d routes\n", len(routes))
}

// handlerName extracts the handler function name using reflection.
func handlerName(handler http.Handler) string {
	handlerFunc := runtime.FuncForPC(reflect.ValueOf(handler).Pointer())
	if handlerFunc == nil {
		return fmt.Sprintf("%T", handler)
	}

	fullName := handlerFunc.Name()
	parts := strings.Split(fullName, "/")
	if len(parts) == 0 {
		return fullName
	}
	return strings.TrimSuffix(parts[len(parts)-1], "-fm")
}
