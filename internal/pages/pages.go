package pages

import (
	"net/http"

	"bookworld/internal/httpx"
)

const AppName = "BookWorld"

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Home struct {
	Name       string    `json:"name"`
	Tagline    string    `json:"tagline"`
	Features   []Feature `json:"features"`
	Navigation []Link    `json:"navigation"`
	Actions    []Link    `json:"actions"`
}

// Navigation is the sidebar shared by every page.
var Navigation = []Link{
	{Title: "Home", URL: "/"},
	{Title: "Discover", URL: "/discover"},
	{Title: "My Lists", URL: "/lists"},
	{Title: "Profile", URL: "/profile"},
}

var home = Home{
	Name:    AppName,
	Tagline: "Track your reading journey, discover new books, and connect with a community of book lovers",
	Features: []Feature{
		{Title: "Track Your Reading", Description: "Keep organized lists of books you're reading, completed, or planning to read"},
		{Title: "Rate & Review", Description: "Share your thoughts and help others discover great books"},
		{Title: "Discover Trending", Description: "Find popular books and see what the community is reading"},
		{Title: "Join the Community", Description: "Connect with fellow readers and share your reading journey"},
	},
	Navigation: Navigation,
	Actions: []Link{
		{Title: "Start Exploring", URL: "/discover"},
		{Title: "Sign In", URL: "/login"},
	},
}

type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Login struct {
	Title  string  `json:"title"`
	Action string  `json:"action"`
	Fields []Field `json:"fields"`
}

var login = Login{
	Title:  "Sign In",
	Action: "/login",
	Fields: []Field{
		{Name: "email", Type: "email"},
		{Name: "password", Type: "password"},
	},
}

type HTTPHandler struct{}

func NewHTTPHandler() *HTTPHandler {
	return &HTTPHandler{}
}

// Home handles GET /
// @Summary Landing page
// @Tags pages
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router / [get]
func (h *HTTPHandler) Home(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, home, nil)
}

// LoginPage handles GET /login
func (h *HTTPHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, login, nil)
}

// LoginSubmit handles POST /login. There is no account backend.
func (h *HTTPHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Sign in is not available yet", nil)
}

// NotFound is the fallback for every unmatched path.
func (h *HTTPHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Page not found", []httpx.ErrorDetail{
		{Field: "path", Message: r.URL.Path},
	})
}
