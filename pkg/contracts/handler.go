package contracts

import "github.com/julienschmidt/httprouter"

// Handler is an HTTP module that mounts its own routes.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
