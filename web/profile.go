package web

import (
	"net/http"
	"strings"

	"github.com/gophora/portal/internal/models"
	"github.com/gophora/portal/pkg/gophora"
)

// profileView flattens the profile record for form binding. Skills and
// interests travel as comma-separated text in the form.
type profileView struct {
	Bio            string
	Skills         string
	Interests      string
	CompanyName    string
	CompanyWebsite string
	Country        string
	City           string
}

type profileData struct {
	Profile profileView
	Editing bool
	Action  string
	Self    string
}

func viewOf(p models.Profile) profileView {
	return profileView{
		Bio:            p.Bio,
		Skills:         strings.Join(p.Skills, ", "),
		Interests:      strings.Join(p.Interests, ", "),
		CompanyName:    p.CompanyName,
		CompanyWebsite: p.CompanyWebsite,
		Country:        p.Country,
		City:           p.City,
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// renderProfile shows the profile screen for either role. Edit mode is an
// explicit toggle via the edit query parameter.
func renderProfile(w http.ResponseWriter, r *http.Request, api *gophora.Client, self, notice string) {
	p := newPage(r, "My Profile")
	p.Notice = notice
	data := profileData{
		Editing: r.URL.Query().Get("edit") == "1",
		Action:  self,
		Self:    self,
	}

	prof, err := api.MyProfile(r.Context(), sessionFrom(r).Token)
	if err != nil {
		p.Error = errText(err)
	} else {
		data.Profile = viewOf(*prof)
	}

	p.Data = data
	render(w, http.StatusOK, "profile", p)
}

func saveProfile(w http.ResponseWriter, r *http.Request, api *gophora.Client, self string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	submitted := models.Profile{
		Bio:            r.PostFormValue("bio"),
		Skills:         splitCSV(r.PostFormValue("skills")),
		Interests:      splitCSV(r.PostFormValue("interests")),
		CompanyName:    r.PostFormValue("companyName"),
		CompanyWebsite: r.PostFormValue("companyWebsite"),
		Country:        r.PostFormValue("country"),
		City:           r.PostFormValue("city"),
	}

	if _, err := api.UpdateProfile(r.Context(), sessionFrom(r).Token, submitted); err != nil {
		p := newPage(r, "My Profile")
		p.Error = errText(err)
		p.Data = profileData{
			Profile: viewOf(submitted),
			Editing: true,
			Action:  self,
			Self:    self,
		}
		render(w, http.StatusOK, "profile", p)
		return
	}

	renderProfile(w, r, api, self, "Profile updated.")
}
