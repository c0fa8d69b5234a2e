package contracts

import "github.com/julienschmidt/httprouter"

// Handler registers public routes.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// AuthenticatedHandler registers routes behind the bearer-token
// middleware; the wrapper is injected so handlers stay testable.
type AuthenticatedHandler interface {
	RegisterRoutes(*httprouter.Router, func(httprouter.Handle) httprouter.Handle)
}
