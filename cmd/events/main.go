// Command events serves the event store.
package main

import (
	"planner-backend/bootstrap"
	"planner-backend/internal/interfaces/router"
)

func main() {
	bootstrap.Run(router.ServiceEvents, "8002", bootstrap.Store(router.ServiceEvents, router.CreateEventsApp))
}
