// Package router wires the HTTP routes of the application: the public
// redirect endpoint, the session-gated URL management pages, and the
// registration/login flow. Handlers talk to the service layer and
// render server-side HTML templates with typed view structures.
package router

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/thoas/go-funk"

	"github.com/tinyapp/tinyapp/internal/logger"
	"github.com/tinyapp/tinyapp/internal/models"
	"github.com/tinyapp/tinyapp/internal/session"
	"github.com/tinyapp/tinyapp/internal/user"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

// User-facing messages, matching the tone of the rendered pages.
const (
	msgInvalidCredentials = "Please enter a valid email and password"
	msgLoginRequired      = "Please log in to continue."
	msgUnauthorized       = "Error: Unauthorized."
	msgNotFound           = "Opps! Page not found."
	msgWelcome            = "Welcome to TinyApp!"
)

type urlShortener interface {
	Register(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	UserByID(ctx context.Context, userID string) (*user.User, error)
	Shorten(ctx context.Context, destination, ownerID string) (string, error)
	Resolve(ctx context.Context, shortCode string) (string, error)
	URLsForUser(ctx context.Context, userID string) (models.UserUrls, error)
	URLForOwner(ctx context.Context, shortCode, userID string) (models.URLRecord, error)
	UpdateDestination(ctx context.Context, shortCode, userID, newDestination string) error
	Delete(ctx context.Context, shortCode, userID string) error
	ShortURL(shortCode string) string
}

type sessionManager interface {
	Login(response http.ResponseWriter, userID string) error
	Logout(response http.ResponseWriter)
	WithSession(h http.Handler) http.Handler
}

// Router holds the handler dependencies and the parsed page templates.
type Router struct {
	service   urlShortener
	sessions  sessionManager
	templates *template.Template
}

type viewUser struct {
	ID    string
	Email string
}

type messageView struct {
	User    *viewUser
	Message string
}

type urlRow struct {
	ShortCode   string
	Destination string
	ShortURL    string
}

type urlsIndexView struct {
	User *viewUser
	Urls []urlRow
}

type urlShowView struct {
	User        *viewUser
	ShortCode   string
	Destination string
	ShortURL    string
	OwnerEmail  string
}

// New builds the chi mux with logging and session middleware and every
// application route.
func New(service urlShortener, sessions sessionManager) (http.Handler, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}

	theRouter := &Router{
		service:   service,
		sessions:  sessions,
		templates: templates,
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(sessions.WithSession)

	router.Get(`/`, theRouter.getRoot)
	router.Get(`/u/{short}`, theRouter.getRedirectToDestination)

	router.Get(`/login`, theRouter.getLogin)
	router.Post(`/login`, theRouter.postLogin)
	router.Post(`/logout`, theRouter.postLogout)
	router.Get(`/register`, theRouter.getRegister)
	router.Post(`/register`, theRouter.postRegister)

	router.Get(`/urls`, theRouter.getUrls)
	router.Post(`/urls`, theRouter.postUrls)
	router.Get(`/urls/new`, theRouter.getUrlsNew)
	router.Get(`/urls/{short}`, theRouter.getUrlsShow)
	router.Post(`/urls/{short}`, theRouter.postUrlsUpdate)
	router.Post(`/urls/{short}/delete`, theRouter.postUrlsDelete)

	return router, nil
}

// currentUser resolves the session's user ID to a view model. A session
// whose user no longer resolves (for example after a restart wiped the
// store) is treated as anonymous.
func (theRouter *Router) currentUser(request *http.Request) *viewUser {
	userID, ok := session.UserIDFromContext(request.Context())
	if !ok {
		return nil
	}

	usr, err := theRouter.service.UserByID(request.Context(), userID)
	if err != nil {
		return nil
	}

	return &viewUser{ID: usr.ID, Email: usr.Email}
}

func (theRouter *Router) render(response http.ResponseWriter, status int, name string, view interface{}) {
	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	response.WriteHeader(status)
	if err := theRouter.templates.ExecuteTemplate(response, name, view); err != nil {
		logger.Log.Debugln("Error rendering the template:", name, err)
	}
}

func (theRouter *Router) renderErrorPage(
	response http.ResponseWriter,
	status int,
	message string,
	currentUser *viewUser,
) {
	theRouter.render(response, status, "error_page.gohtml", messageView{
		User:    currentUser,
		Message: message,
	})
}

func (theRouter *Router) renderAuthPrompt(
	response http.ResponseWriter,
	status int,
	message string,
) {
	theRouter.render(response, status, "auth_prompt.gohtml", messageView{Message: message})
}

// renderServiceError maps a service error kind to a status and a
// rendered page. The handlers never let a service error escape.
func (theRouter *Router) renderServiceError(
	response http.ResponseWriter,
	err error,
	currentUser *viewUser,
) {
	switch {
	case errors.Is(err, models.ErrValidation):
		theRouter.renderErrorPage(response, http.StatusBadRequest, msgInvalidCredentials, currentUser)

	case errors.Is(err, models.ErrDuplicateEmail):
		theRouter.renderErrorPage(response, http.StatusBadRequest, msgInvalidCredentials, currentUser)

	case errors.Is(err, models.ErrAuthentication):
		theRouter.renderErrorPage(response, http.StatusUnauthorized, msgInvalidCredentials, currentUser)

	case errors.Is(err, models.ErrNotAuthenticated):
		theRouter.renderAuthPrompt(response, http.StatusUnauthorized, msgLoginRequired)

	case errors.Is(err, models.ErrNotAuthorized):
		theRouter.renderErrorPage(response, http.StatusForbidden, msgUnauthorized, currentUser)

	case errors.Is(err, models.ErrNotFound):
		theRouter.renderErrorPage(response, http.StatusNotFound, msgNotFound, currentUser)

	default:
		logger.Log.Debugln("Unexpected service error:", err)
		response.WriteHeader(http.StatusInternalServerError)
	}
}

func (theRouter *Router) getRoot(response http.ResponseWriter, request *http.Request) {
	if theRouter.currentUser(request) != nil {
		http.Redirect(response, request, "/urls", http.StatusFound)

		return
	}

	http.Redirect(response, request, "/login", http.StatusFound)
}

func (theRouter *Router) getRedirectToDestination(response http.ResponseWriter, request *http.Request) {
	short := chi.URLParam(request, "short")
	destination, err := theRouter.service.Resolve(request.Context(), short)
	if err != nil {
		theRouter.renderServiceError(response, err, theRouter.currentUser(request))

		return
	}

	http.Redirect(response, request, destination, http.StatusTemporaryRedirect)
}

func (theRouter *Router) getLogin(response http.ResponseWriter, request *http.Request) {
	if theRouter.currentUser(request) != nil {
		http.Redirect(response, request, "/urls", http.StatusFound)

		return
	}

	theRouter.render(response, http.StatusOK, "login.gohtml", messageView{})
}

func (theRouter *Router) postLogin(response http.ResponseWriter, request *http.Request) {
	userID, err := theRouter.service.Authenticate(
		request.Context(),
		request.PostFormValue("email"),
		request.PostFormValue("password"),
	)
	if err != nil {
		theRouter.renderServiceError(response, err, nil)

		return
	}

	if err := theRouter.sessions.Login(response, userID); err != nil {
		logger.Log.Debugln("Error issuing the session:", err)
		response.WriteHeader(http.StatusInternalServerError)

		return
	}

	http.Redirect(response, request, "/urls", http.StatusFound)
}

func (theRouter *Router) postLogout(response http.ResponseWriter, request *http.Request) {
	theRouter.sessions.Logout(response)
	http.Redirect(response, request, "/urls", http.StatusFound)
}

func (theRouter *Router) getRegister(response http.ResponseWriter, request *http.Request) {
	if theRouter.currentUser(request) != nil {
		http.Redirect(response, request, "/urls", http.StatusFound)

		return
	}

	theRouter.render(response, http.StatusOK, "register.gohtml", messageView{})
}

func (theRouter *Router) postRegister(response http.ResponseWriter, request *http.Request) {
	userID, err := theRouter.service.Register(
		request.Context(),
		request.PostFormValue("email"),
		request.PostFormValue("password"),
	)
	if err != nil {
		theRouter.renderServiceError(response, err, nil)

		return
	}

	if err := theRouter.sessions.Login(response, userID); err != nil {
		logger.Log.Debugln("Error issuing the session:", err)
		response.WriteHeader(http.StatusInternalServerError)

		return
	}

	http.Redirect(response, request, "/urls", http.StatusFound)
}

func (theRouter *Router) getUrls(response http.ResponseWriter, request *http.Request) {
	currentUser := theRouter.currentUser(request)
	if currentUser == nil {
		theRouter.renderAuthPrompt(response, http.StatusOK, msgWelcome)

		return
	}

	urls, err := theRouter.service.URLsForUser(request.Context(), currentUser.ID)
	if err != nil {
		theRouter.renderServiceError(response, err, currentUser)

		return
	}

	// Maps iterate in random order; sort the codes so the page is stable.
	shortCodes := funk.Keys(urls).([]string)
	sort.Strings(shortCodes)

	view := urlsIndexView{User: currentUser}
	for _, shortCode := range shortCodes {
		view.Urls = append(view.Urls, urlRow{
			ShortCode:   shortCode,
			Destination: urls[shortCode].Destination,
			ShortURL:    theRouter.service.ShortURL(shortCode),
		})
	}

	theRouter.render(response, http.StatusOK, "urls_index.gohtml", view)
}

func (theRouter *Router) getUrlsNew(response http.ResponseWriter, request *http.Request) {
	currentUser := theRouter.currentUser(request)
	if currentUser == nil {
		http.Redirect(response, request, "/login", http.StatusFound)

		return
	}

	theRouter.render(response, http.StatusOK, "urls_new.gohtml", messageView{User: currentUser})
}

func (theRouter *Router) getUrlsShow(response http.ResponseWriter, request *http.Request) {
	currentUser := theRouter.currentUser(request)
	if currentUser == nil {
		theRouter.renderServiceError(response, models.ErrNotAuthenticated, nil)

		return
	}

	short := chi.URLParam(request, "short")
	record, err := theRouter.service.URLForOwner(request.Context(), short, currentUser.ID)
	if err != nil {
		theRouter.renderServiceError(response, err, currentUser)

		return
	}

	theRouter.render(response, http.StatusOK, "urls_show.gohtml", urlShowView{
		User:        currentUser,
		ShortCode:   record.ShortCode,
		Destination: record.Destination,
		ShortURL:    theRouter.service.ShortURL(record.ShortCode),
		OwnerEmail:  currentUser.Email,
	})
}

func (theRouter *Router) postUrls(response http.ResponseWriter, request *http.Request) {
	currentUser := theRouter.currentUser(request)
	if currentUser == nil {
		theRouter.renderServiceError(response, models.ErrNotAuthenticated, nil)

		return
	}

	shortCode, err := theRouter.service.Shorten(
		request.Context(),
		request.PostFormValue("longURL"),
		currentUser.ID,
	)
	if err != nil {
		theRouter.renderServiceError(response, err, currentUser)

		return
	}

	http.Redirect(response, request, "/urls/"+shortCode, http.StatusFound)
}

func (theRouter *Router) postUrlsUpdate(response http.ResponseWriter, request *http.Request) {
	currentUser := theRouter.currentUser(request)
	if currentUser == nil {
		theRouter.renderServiceError(response, models.ErrNotAuthenticated, nil)

		return
	}

	err := theRouter.service.UpdateDestination(
		request.Context(),
		chi.URLParam(request, "short"),
		currentUser.ID,
		request.PostFormValue("longURL"),
	)
	if err != nil {
		theRouter.renderServiceError(response, err, currentUser)

		return
	}

	http.Redirect(response, request, "/urls", http.StatusFound)
}

func (theRouter *Router) postUrlsDelete(response http.ResponseWriter, request *http.Request) {
	currentUser := theRouter.currentUser(request)
	if currentUser == nil {
		theRouter.renderServiceError(response, models.ErrNotAuthenticated, nil)

		return
	}

	err := theRouter.service.Delete(request.Context(), chi.URLParam(request, "short"), currentUser.ID)
	if err != nil {
		theRouter.renderServiceError(response, err, currentUser)

		return
	}

	http.Redirect(response, request, "/urls", http.StatusFound)
}
