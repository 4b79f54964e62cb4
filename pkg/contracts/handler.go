package contracts

import "github.com/julienschmidt/httprouter"

// Handler is anything that can mount its routes on the shared router.
// The app shell accepts a list of these at startup.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
