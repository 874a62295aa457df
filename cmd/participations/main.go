// Command participations serves the participation store.
package main

import (
	"planner-backend/bootstrap"
	"planner-backend/internal/interfaces/router"
)

func main() {
	bootstrap.Run(router.ServiceParticipations, "8004", bootstrap.Store(router.ServiceParticipations, router.CreateParticipationsApp))
}
