package ipc

const (
	statusEndpoint      = "/status"
	oauthStartEndpoint  = "/oauth/start"
	oauthCancelEndpoint = "/oauth/cancel"
	authEventsEndpoint  = "/oauth/events"
	deepLinkEndpoint    = "/deeplink"
	signOutEndpoint     = "/signout"
)

const tracerName = "github.com/taskdeck/taskdeck/ipc"
