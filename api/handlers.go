package api

import "time"

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(projects projectStore, videoStore videoStore, notifier projectNotifier, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		projectHandler: newProjectHandler(projects, notifier),
		videoHandler:   newVideoHandler(videoStore),
		healthHandler:  newHealthHandler(startupTime),
	}
}
