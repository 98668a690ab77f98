package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	mbhttp "code.meridianbank.io/meridian-go/libs/http"
	"code.meridianbank.io/meridian-go/logging"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

const callbackPath = "/callback"

var ErrListenerNotStarted = errors.New("the listener is not started")

// Callback carries the query parameters the authorization server appends to
// the redirect URI when it sends the user back.
type Callback struct {
	Code  string
	State string
}

// CallbackListener is a short-lived local HTTP server capturing the
// authorization redirect. The first callback is handed over to Wait, later
// ones are acknowledged and dropped.
type CallbackListener struct {
	*httprouter.Router

	log *logging.Logger
	srv *http.Server

	callbacks chan Callback
}

func NewCallbackListener(log *logging.Logger) *CallbackListener {
	l := &CallbackListener{
		Router:    httprouter.New(),
		log:       log.Named(namedLogger),
		callbacks: make(chan Callback, 1),
	}
	l.GET(callbackPath, l.handleCallback)
	return l
}

// Start binds the listener on the address and returns the redirect URI to
// put in the authorization request. Port zero picks a free port.
func (l *CallbackListener) Start(address string) (string, error) {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return "", fmt.Errorf("couldn't listen on %s: %w", address, err)
	}

	corsOptions := mbhttp.CORSOptions(mbhttp.CORSConfig{
		AllowedOrigins: []string{"*"},
		MaxAge:         600,
	})
	l.srv = &http.Server{
		Handler: cors.New(corsOptions).Handler(l),
	}

	go func() {
		if err := l.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.log.Error("the callback listener stopped", logging.Error(err))
		}
	}()

	redirectURI := fmt.Sprintf("http://%s%s", lis.Addr().String(), callbackPath)
	l.log.Info("callback listener started",
		logging.String("redirect-uri", redirectURI))
	return redirectURI, nil
}

// Wait blocks until the authorization server redirects the user back, or the
// context expires.
func (l *CallbackListener) Wait(ctx context.Context) (Callback, error) {
	select {
	case callback := <-l.callbacks:
		return callback, nil
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	}
}

func (l *CallbackListener) Stop() error {
	if l.srv == nil {
		return ErrListenerNotStarted
	}
	return l.srv.Shutdown(context.Background())
}

func (l *CallbackListener) handleCallback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callback := Callback{
		Code:  r.URL.Query().Get("code"),
		State: r.URL.Query().Get("state"),
	}

	select {
	case l.callbacks <- callback:
	default:
		// a callback already waits to be consumed, this one changes nothing
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<html><body>Authorization received. You can close this window and return to the terminal.</body></html>"))
}
