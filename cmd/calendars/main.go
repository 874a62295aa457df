// Command calendars serves the calendar-share store.
package main

import (
	"planner-backend/bootstrap"
	"planner-backend/internal/interfaces/router"
)

func main() {
	bootstrap.Run(router.ServiceCalendars, "8005", bootstrap.Store(router.ServiceCalendars, router.CreateCalendarsApp))
}
