package web

import (
	"net/http"

	"log/slog"

	"github.com/gophora/portal/internal/guard"
	"github.com/gophora/portal/internal/models"
	"github.com/gophora/portal/internal/session"
	"github.com/gophora/portal/pkg/geo"
	"github.com/gophora/portal/pkg/gophora"
)

// flashKey holds a one-shot notice surfaced on the next login screen.
const flashKey = "flash"

type AuthHandler struct {
	api    *gophora.Client
	geo    *geo.Client
	values *session.Store
}

func NewAuthHandler(api *gophora.Client, geoClient *geo.Client, values *session.Store) *AuthHandler {
	return &AuthHandler{api: api, geo: geoClient, values: values}
}

type loginData struct {
	Role  string
	Email string
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess.LoggedIn() {
		http.Redirect(w, r, guard.Dashboard(sess.Role), http.StatusSeeOther)
		return
	}

	p := newPage(r, "Log in")
	if notice, ok, err := h.values.ConsumeOnce(r.Context(), sidFrom(r), flashKey); err == nil && ok {
		p.Notice = notice
	}
	p.Data = loginData{}
	render(w, http.StatusOK, "login", p)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	role := models.Role(r.PostFormValue("role"))
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	p := newPage(r, "Log in")
	p.Data = loginData{Role: string(role), Email: email}

	if !role.Valid() {
		p.Error = "Please select a role before logging in."
		render(w, http.StatusOK, "login", p)
		return
	}

	token, err := h.api.Login(r.Context(), email, password)
	if err != nil {
		p.Error = errText(err)
		render(w, http.StatusOK, "login", p)
		return
	}

	// the backend authenticates credentials only; the selected role has to
	// match the account's actual role before the session is established
	user, err := h.api.Me(r.Context(), token)
	if err != nil {
		p.Error = errText(err)
		render(w, http.StatusOK, "login", p)
		return
	}
	if user.Role != role {
		p.Error = "You are not authorized to log in as a " + string(role) + "."
		render(w, http.StatusOK, "login", p)
		return
	}

	if err := h.values.SetLogin(r.Context(), sidFrom(r), token, role); err != nil {
		logger.Error("session login write failed", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, guard.Dashboard(role), http.StatusSeeOther)
}

type registerData struct {
	Role             string
	Name             string
	Email            string
	Country          string
	City             string
	Skills           string
	OrganizationName string
	Website          string
	Countries        []geo.Country
	Cities           []string
}

func (h *AuthHandler) registerPage(r *http.Request, data registerData) page {
	p := newPage(r, "Register")
	if data.Role == "" {
		data.Role = string(models.RoleSeeker)
	}

	countries, err := h.geo.Countries(r.Context())
	if err != nil {
		logger.Warn("country lookup failed", slog.Any("err", err))
		p.Error = "Could not load countries. Try again later."
	} else {
		data.Countries = countries
		if data.Country != "" {
			data.Cities = geo.CitiesFor(countries, data.Country)
		}
	}

	p.Data = data
	return p
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := h.registerPage(r, registerData{
		Role:    q.Get("role"),
		Country: q.Get("country"),
	})
	render(w, http.StatusOK, "register", p)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data := registerData{
		Role:             r.PostFormValue("role"),
		Name:             r.PostFormValue("name"),
		Email:            r.PostFormValue("email"),
		Country:          r.PostFormValue("country"),
		City:             r.PostFormValue("city"),
		Skills:           r.PostFormValue("skills"),
		OrganizationName: r.PostFormValue("organizationName"),
		Website:          r.PostFormValue("website"),
	}

	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirmPassword")
	if password != confirm {
		p := h.registerPage(r, data)
		p.Error = "Passwords do not match."
		render(w, http.StatusOK, "register", p)
		return
	}

	role := models.Role(data.Role)
	if !role.Valid() {
		p := h.registerPage(r, data)
		p.Error = "Please select a role."
		render(w, http.StatusOK, "register", p)
		return
	}

	req := gophora.RegisterRequest{
		Email:    data.Email,
		Password: password,
		FullName: data.Name,
		Role:     role,
		Country:  data.Country,
		City:     data.City,
	}
	if role == models.RoleProvider {
		req.OrganizationName = data.OrganizationName
		req.Website = data.Website
	} else {
		req.Skills = data.Skills
	}

	if err := h.api.Register(r.Context(), req); err != nil {
		p := h.registerPage(r, data)
		p.Error = errText(err)
		render(w, http.StatusOK, "register", p)
		return
	}

	if err := h.values.Write(r.Context(), sidFrom(r), flashKey, "Registration successful. Please log in."); err != nil {
		logger.Warn("flash write failed", slog.Any("err", err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.values.Clear(r.Context(), sidFrom(r)); err != nil {
		logger.Error("session clear failed", slog.Any("err", err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
