// Command invitations serves the invitation store.
package main

import (
	"planner-backend/bootstrap"
	"planner-backend/internal/interfaces/router"
)

func main() {
	bootstrap.Run(router.ServiceInvitations, "8003", bootstrap.Store(router.ServiceInvitations, router.CreateInvitationsApp))
}
